package terminal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// openPTY returns the master and slave ends of a new pseudo-terminal sized
// cols x rows. Set per platform.
var openPTY func(cols, rows uint16) (*os.File, *os.File, error)

// session is one child process attached to one pseudo-terminal.
type session struct {
	id         string
	argv       []string
	workingDir string
	startedAt  time.Time

	cmd    *exec.Cmd
	pty    *ptyFile
	writer *writerHandle
	master *masterHandle

	// shutdown stops the relay; set once, never cleared.
	shutdown atomic.Bool
	// relayDone closes when the relay returns; exited when the child is reaped.
	relayDone chan struct{}
	exited    chan struct{}
}

func (s *session) info() SessionInfo {
	cols, rows := s.master.Size()
	return SessionInfo{
		ID:         s.id,
		Command:    s.argv,
		WorkingDir: s.workingDir,
		Cols:       cols,
		Rows:       rows,
		PID:        s.cmd.Process.Pid,
		StartedAt:  s.startedAt,
		Active:     !s.shutdown.Load(),
	}
}

// Manager is the session registry. The map is the only shared mutable state;
// the lock guards map access only and no I/O happens while it is held.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	closing  bool

	opts    Options
	emitter Emitter
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewManager creates a session registry. emitter, metrics and logger may be nil.
func NewManager(opts Options, emitter Emitter, metrics *monitoring.Metrics, logger *zap.Logger) *Manager {
	defaults := DefaultOptions()
	if opts.DefaultShell == "" {
		opts.DefaultShell = defaults.DefaultShell
	}
	if opts.DefaultCols == 0 {
		opts.DefaultCols = defaults.DefaultCols
	}
	if opts.DefaultRows == 0 {
		opts.DefaultRows = defaults.DefaultRows
	}
	if opts.ReadChunk <= 0 {
		opts.ReadChunk = defaults.ReadChunk
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = defaults.DrainTimeout
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = defaults.KillTimeout
	}
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		sessions: make(map[string]*session),
		opts:     opts,
		emitter:  emitter,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create spawns a child attached to a new pseudo-terminal and registers it.
// Nothing is registered and every descriptor is released when it fails.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	_, exists := m.sessions[opts.ID]
	closing := m.closing
	m.mu.Unlock()
	if closing {
		return nil, fmt.Errorf("session manager is shutting down")
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, opts.ID)
	}

	s, err := m.spawn(opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, taken := m.sessions[opts.ID]; taken || m.closing {
		m.mu.Unlock()
		m.discard(s)
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, opts.ID)
	}
	m.sessions[opts.ID] = s
	m.mu.Unlock()

	m.metrics.SessionStarted()

	go m.relay(s)
	go m.watchExit(s)

	info := s.info()
	m.logger.Info("PTY session created",
		zap.String("session_id", s.id),
		zap.Strings("command", s.argv),
		zap.String("working_dir", s.workingDir),
		zap.Int("pid", info.PID),
	)
	return &info, nil
}

func (m *Manager) spawn(opts CreateOptions) (*session, error) {
	argv := strings.Fields(opts.Command)
	if len(argv) == 0 {
		argv = []string{m.DefaultShell()}
	}

	cols, rows := opts.Cols, opts.Rows
	if cols == 0 {
		cols = m.opts.DefaultCols
	}
	if rows == 0 {
		rows = m.opts.DefaultRows
	}

	workingDir := opts.WorkingDir
	if workingDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			workingDir = home
		}
	}

	ptmx, tty, err := openPTY(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to create PTY: %w", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workingDir
	cmd.Env = buildEnv(opts.Env)
	attachPTY(cmd, tty)

	if err := cmd.Start(); err != nil {
		_ = tty.Close()
		_ = ptmx.Close()
		return nil, fmt.Errorf("failed to spawn command: %w", err)
	}
	// The child holds its own copy of the slave side.
	_ = tty.Close()

	pf := &ptyFile{f: ptmx}
	return &session{
		id:         opts.ID,
		argv:       argv,
		workingDir: workingDir,
		startedAt:  time.Now(),
		cmd:        cmd,
		pty:        pf,
		writer:     &writerHandle{pty: pf},
		master:     &masterHandle{pty: pf, cols: cols, rows: rows},
		relayDone:  make(chan struct{}),
		exited:     make(chan struct{}),
	}, nil
}

// discard tears down a session that never made it into the registry.
func (m *Manager) discard(s *session) {
	s.shutdown.Store(true)
	_ = s.pty.Close()
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
}

// DefaultShell is the shell launched when a create request names no command.
func (m *Manager) DefaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return m.opts.DefaultShell
}

func buildEnv(extra map[string]string) []string {
	env := append(os.Environ(), "TERM=xterm-256color")

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// lookup returns the registered session for id. Handles are reached through
// the returned pointer after the registry lock is released.
func (m *Manager) lookup(id string) (*session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Write sends input to a session.
func (m *Manager) Write(id string, data []byte) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write to PTY: %w", err)
	}
	return nil
}

// Resize changes a session's terminal dimensions.
func (m *Manager) Resize(id string, cols, rows uint16) error {
	if cols == 0 || rows == 0 {
		return fmt.Errorf("terminal dimensions must be positive")
	}
	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := s.master.Resize(cols, rows); err != nil {
		return fmt.Errorf("failed to resize PTY: %w", err)
	}
	return nil
}

// Close removes a session and hangs up its terminal. Closing an id that is
// not registered, including one already closed, returns ErrSessionNotFound.
// The relay is not waited for. A child still running KillTimeout after the
// hangup has its process group killed, which also releases the relay.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	m.stop(s)
	m.metrics.SessionEnded(monitoring.EndReasonClosed)
	m.logger.Info("PTY session closed", zap.String("session_id", id))
	return nil
}

func (m *Manager) stop(s *session) {
	s.shutdown.Store(true)
	if err := s.writer.Close(); err != nil {
		m.logger.Debug("PTY close error", zap.String("session_id", s.id), zap.Error(err))
	}
	// Closing the master does not hang up the line while the relay is still
	// inside a read on it, so signal the child's process group directly.
	select {
	case <-s.exited:
	default:
		hangup(s.cmd.Process)
		go m.reap(s)
	}
}

func (m *Manager) reap(s *session) {
	timer := time.NewTimer(m.opts.KillTimeout)
	defer timer.Stop()

	select {
	case <-s.exited:
	case <-timer.C:
		m.logger.Warn("PTY child ignored hangup, killing",
			zap.String("session_id", s.id),
			zap.Int("pid", s.cmd.Process.Pid),
		)
		kill(s.cmd.Process)
	}
}

// evictIf removes id only while it still maps to s, so a session created
// under a reused id is never evicted by its predecessor's watcher.
func (m *Manager) evictIf(s *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.id]; ok && cur == s {
		delete(m.sessions, s.id)
		return true
	}
	return false
}

// Get returns a snapshot of one session.
func (m *Manager) Get(id string) (*SessionInfo, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	info := s.info()
	return &info, nil
}

// List returns snapshots of all sessions ordered by id.
func (m *Manager) List() []SessionInfo {
	m.mu.Lock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown hangs up every session and refuses new ones. It waits for
// children to exit until ctx is done, then kills the rest.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	m.closing = true
	sessions := make([]*session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		m.stop(s)
		m.metrics.SessionEnded(monitoring.EndReasonClosed)
	}

	for _, s := range sessions {
		select {
		case <-s.exited:
		case <-ctx.Done():
			m.logger.Warn("killing PTY child after shutdown deadline",
				zap.String("session_id", s.id),
				zap.Int("pid", s.cmd.Process.Pid),
			)
			kill(s.cmd.Process)
		}
	}

	if len(sessions) > 0 {
		m.logger.Info("PTY sessions shut down", zap.Int("count", len(sessions)))
	}
}
