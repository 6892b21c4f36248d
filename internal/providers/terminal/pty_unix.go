//go:build !windows

package terminal

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

func init() {
	openPTY = func(cols, rows uint16) (*os.File, *os.File, error) {
		ptmx, tty, err := pty.Open()
		if err != nil {
			return nil, nil, err
		}
		if err := pty.Setsize(ptmx, &pty.Winsize{Cols: cols, Rows: rows}); err != nil {
			_ = ptmx.Close()
			_ = tty.Close()
			return nil, nil, err
		}
		return ptmx, tty, nil
	}
}

// attachPTY makes tty the child's controlling terminal in a new session.
func attachPTY(cmd *exec.Cmd, tty *os.File) {
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true
}

func setSize(f *os.File, cols, rows uint16) error {
	return pty.Setsize(f, &pty.Winsize{Cols: cols, Rows: rows})
}

// isHangup reports read errors that mean the slave side is gone. Linux
// returns EIO once the last slave descriptor closes.
func isHangup(err error) bool {
	return errors.Is(err, syscall.EIO)
}

// hangup sends SIGHUP to the child's process group. The child leads its own
// session, so its pid is the group id.
func hangup(p *os.Process) {
	if err := syscall.Kill(-p.Pid, syscall.SIGHUP); err != nil {
		_ = p.Signal(syscall.SIGHUP)
	}
}

// kill sends SIGKILL to the child's process group.
func kill(p *os.Process) {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		_ = p.Kill()
	}
}
