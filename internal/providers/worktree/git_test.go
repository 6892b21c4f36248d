package worktree

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitErrorMessage(t *testing.T) {
	err := &GitError{Args: []string{"checkout", "nope"}, Stderr: "error: pathspec 'nope' did not match\n", ExitCode: 1}
	assert.Equal(t, "error: pathspec 'nope' did not match", err.Error())

	err = &GitError{Args: []string{"status"}, ExitCode: 128}
	assert.Equal(t, "git status exited with status 128", err.Error())
}

func TestMissingGitTripsBreaker(t *testing.T) {
	g := NewGit(time.Second, nil)
	g.binary = "/nonexistent/git"

	for i := 0; i < 3; i++ {
		_, err := g.Run(context.Background(), t.TempDir(), "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute git command")
	}

	_, err := g.Run(context.Background(), t.TempDir(), "status")
	assert.ErrorIs(t, err, resilience.ErrOpen)
}

func TestIsFault(t *testing.T) {
	assert.False(t, isFault(nil))
	assert.False(t, isFault(&GitError{ExitCode: 1}))
	assert.False(t, isFault(fmt.Errorf("git status: %w", context.Canceled)))
	assert.True(t, isFault(fmt.Errorf("git status: %w", context.DeadlineExceeded)))
	assert.True(t, isFault(errors.New("exec: not found")))
}
