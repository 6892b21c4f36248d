package worktree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/resilience"
	"go.uber.org/zap"
)

// GitError is returned when git exits non-zero. Its message is git's stderr.
type GitError struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *GitError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("git %s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
}

// Git runs git subcommands against a directory.
type Git struct {
	binary  string
	timeout time.Duration
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewGit creates a runner. A zero timeout means DefaultCommandTimeout.
func NewGit(timeout time.Duration, logger *zap.Logger) *Git {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Git{
		binary:  "git",
		timeout: timeout,
		logger:  logger,
		breaker: resilience.New("git", resilience.Settings{
			Threshold: 3,
			Cooldown:  30 * time.Second,
			IsFault:   isFault,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
	}
}

// isFault reports errors that mean git itself is unusable. A non-zero exit
// or a caller cancelling is not one.
func isFault(err error) bool {
	var gitErr *GitError
	return err != nil && !errors.As(err, &gitErr) && !errors.Is(err, context.Canceled)
}

// Run executes `git -C dir args...` and returns stdout.
func (g *Git) Run(ctx context.Context, dir string, args ...string) (string, error) {
	var out string
	err := g.breaker.Do(func() error {
		var runErr error
		out, runErr = g.exec(ctx, dir, args)
		return runErr
	})
	if errors.Is(err, resilience.ErrOpen) {
		return "", fmt.Errorf("git unavailable: %w", err)
	}
	return out, err
}

func (g *Git) exec(ctx context.Context, dir string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	full := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, g.binary, full...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	g.logger.Debug("git",
		zap.String("dir", dir),
		zap.Strings("args", args),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)

	if err == nil {
		return stdout.String(), nil
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("git %s: %w", args[0], ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), &GitError{
			Args:     args,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitErr.ExitCode(),
		}
	}
	return "", fmt.Errorf("failed to execute git command: %w", err)
}

// Output is Run with surrounding whitespace trimmed.
func (g *Git) Output(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := g.Run(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
