package terminal

import (
	"os"
	"sync"
)

// ptyFile owns the master side of the pseudo-terminal. The relay reads from
// it while the writer and master handles share it; whoever closes first
// wins and later closes are no-ops.
type ptyFile struct {
	f    *os.File
	once sync.Once
	err  error
}

func (p *ptyFile) Read(b []byte) (int, error) {
	return p.f.Read(b)
}

func (p *ptyFile) Close() error {
	p.once.Do(func() {
		p.err = p.f.Close()
	})
	return p.err
}

// writerHandle serializes input written to a session.
type writerHandle struct {
	mu  sync.Mutex
	pty *ptyFile
}

func (w *writerHandle) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// os.File.Write loops until everything is written or an error occurs,
	// and a pty master has no user-space buffer to flush.
	_, err := w.pty.f.Write(data)
	return err
}

// Close hangs up the terminal, which delivers SIGHUP to the child's
// foreground process group. It does not wait for the write lock, so a write
// blocked on a stalled child is interrupted rather than waited on.
func (w *writerHandle) Close() error {
	return w.pty.Close()
}

// masterHandle serializes control operations and remembers the current size.
type masterHandle struct {
	mu   sync.Mutex
	pty  *ptyFile
	cols uint16
	rows uint16
}

func (m *masterHandle) Resize(cols, rows uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := setSize(m.pty.f, cols, rows); err != nil {
		return err
	}
	m.cols, m.rows = cols, rows
	return nil
}

func (m *masterHandle) Size() (uint16, uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cols, m.rows
}
