//go:build windows

package terminal

import (
	"errors"
	"os"
	"os/exec"
)

var errUnsupported = errors.New("pseudo-terminals are not supported on this platform")

func init() {
	openPTY = func(cols, rows uint16) (*os.File, *os.File, error) {
		return nil, nil, errUnsupported
	}
}

func attachPTY(cmd *exec.Cmd, tty *os.File) {}

func setSize(f *os.File, cols, rows uint16) error {
	return errUnsupported
}

func isHangup(err error) bool {
	return false
}

func hangup(p *os.Process) {
	_ = p.Kill()
}

func kill(p *os.Process) {
	_ = p.Kill()
}
