package terminal

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// relay copies terminal output to the emitter until the session shuts down
// or the terminal reports end of stream. It owns the final close of the
// master descriptor.
func (m *Manager) relay(s *session) {
	defer close(s.relayDone)
	defer s.pty.Close()

	buf := make([]byte, m.opts.ReadChunk)
	for {
		if s.shutdown.Load() {
			return
		}

		n, err := s.pty.Read(buf)
		if n > 0 {
			// A read that completes after close must not surface.
			if s.shutdown.Load() {
				return
			}
			m.emitter.Emit(OutputEvent(s.id), decodeLossy(buf[:n]))
			m.metrics.AddOutputBytes(n)
		}

		if err != nil {
			switch {
			case s.shutdown.Load(), errors.Is(err, io.EOF), errors.Is(err, os.ErrClosed), isHangup(err):
				m.logger.Debug("PTY relay finished", zap.String("session_id", s.id), zap.Error(err))
			default:
				m.logger.Warn("PTY read error", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}
	}
}

// decodeLossy converts a chunk to text, replacing invalid UTF-8 with U+FFFD.
// Chunks are decoded independently, so a rune split across reads is replaced
// on both sides.
func decodeLossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// watchExit reaps the child. If the session is still registered it is
// evicted, the relay is given a bounded window to flush output written just
// before exit, and an exit event follows the last output.
func (m *Manager) watchExit(s *session) {
	waitErr := s.cmd.Wait()
	close(s.exited)

	code := exitCode(s.cmd, waitErr)
	evicted := m.evictIf(s)

	select {
	case <-s.relayDone:
	case <-time.After(m.opts.DrainTimeout):
		// A grandchild still holds the terminal open.
	}
	s.shutdown.Store(true)
	_ = s.pty.Close()

	if !evicted {
		m.logger.Debug("PTY child reaped after close",
			zap.String("session_id", s.id),
			zap.Int("exit_code", code),
		)
		return
	}

	m.metrics.SessionEnded(monitoring.EndReasonExited)
	m.emitter.Emit(ExitEvent(s.id), ExitStatus{ExitCode: code})
	m.logger.Info("PTY session exited",
		zap.String("session_id", s.id),
		zap.Int("exit_code", code),
	)
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
