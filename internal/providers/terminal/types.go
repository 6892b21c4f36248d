package terminal

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when no session is registered under an id.
	ErrSessionNotFound = errors.New("PTY session not found")
	// ErrSessionExists is returned when create targets a registered id.
	ErrSessionExists = errors.New("session already exists")
)

// Emitter delivers named events to connected front ends. Implementations
// must not block for long; the output relay calls Emit inline.
type Emitter interface {
	Emit(event string, payload interface{})
}

// OutputEvent names the event carrying output of a session.
func OutputEvent(sessionID string) string {
	return "pty-output-" + sessionID
}

// ExitEvent names the event published when a session's child exits on its own.
func ExitEvent(sessionID string) string {
	return "pty-exit-" + sessionID
}

// Options holds manager-wide defaults.
type Options struct {
	DefaultShell string
	DefaultCols  uint16
	DefaultRows  uint16
	ReadChunk    int
	// DrainTimeout bounds how long the exit watcher waits for the relay to
	// flush output written just before the child exited.
	DrainTimeout time.Duration
	// KillTimeout is how long a closed session's child may ignore the hangup
	// before its process group is killed.
	KillTimeout time.Duration
}

// DefaultOptions mirrors the desktop app's behavior.
func DefaultOptions() Options {
	return Options{
		DefaultShell: "/bin/zsh",
		DefaultCols:  80,
		DefaultRows:  24,
		ReadChunk:    4096,
		DrainTimeout: 2 * time.Second,
		KillTimeout:  5 * time.Second,
	}
}

// CreateOptions describes a session to spawn.
type CreateOptions struct {
	ID         string
	WorkingDir string
	// Command is split on whitespace; empty means the user's shell.
	Command string
	Cols    uint16
	Rows    uint16
	Env     map[string]string
}

// SessionInfo is the public representation of a session
type SessionInfo struct {
	ID         string    `json:"id"`
	Command    []string  `json:"command"`
	WorkingDir string    `json:"working_dir"`
	Cols       uint16    `json:"cols"`
	Rows       uint16    `json:"rows"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	Active     bool      `json:"active"`
}

// ExitStatus is the payload of an exit event.
type ExitStatus struct {
	ExitCode int `json:"exit_code"`
}

type nopEmitter struct{}

func (nopEmitter) Emit(string, interface{}) {}
