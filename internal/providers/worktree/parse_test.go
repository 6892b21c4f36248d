package worktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorktreeList(t *testing.T) {
	output := "worktree /repo\n" +
		"HEAD 1111111111111111111111111111111111111111\n" +
		"branch refs/heads/main\n" +
		"\n" +
		"worktree /repo-feature\n" +
		"HEAD 2222222222222222222222222222222222222222\n" +
		"branch refs/heads/feature/login\n" +
		"\n" +
		"worktree /repo-detached\n" +
		"HEAD 3333333333333333333333333333333333333333\n" +
		"detached"

	worktrees := parseWorktreeList(output)
	require.Len(t, worktrees, 3)

	assert.Equal(t, "/repo", worktrees[0].Path)
	assert.True(t, worktrees[0].IsMain)
	require.NotNil(t, worktrees[0].Branch)
	assert.Equal(t, "main", *worktrees[0].Branch)

	assert.False(t, worktrees[1].IsMain)
	assert.Equal(t, "feature/login", *worktrees[1].Branch)
	assert.Equal(t, "2222222222222222222222222222222222222222", worktrees[1].Head)

	// last block has no trailing blank line
	assert.Equal(t, "/repo-detached", worktrees[2].Path)
	assert.True(t, worktrees[2].IsDetached)
	assert.Nil(t, worktrees[2].Branch)
}

func TestParseWorktreeListBare(t *testing.T) {
	worktrees := parseWorktreeList("worktree /srv/repo.git\nbare\n\n")
	require.Len(t, worktrees, 1)
	assert.True(t, worktrees[0].IsBare)
	assert.True(t, worktrees[0].IsMain)
}

func TestParseWorktreeListEmpty(t *testing.T) {
	assert.Empty(t, parseWorktreeList(""))
	assert.NotNil(t, parseWorktreeList(""))
}

func TestParseConflicts(t *testing.T) {
	status := "UU src/a.go\n" +
		"M  src/b.go\n" +
		"AA docs/new.md\n" +
		"?? scratch.txt\n" +
		"DD old.txt\n"

	assert.Equal(t, []string{"src/a.go", "docs/new.md", "old.txt"}, parseConflicts(status))
	assert.Empty(t, parseConflicts(""))
}

func TestParseAheadBehind(t *testing.T) {
	tests := []struct {
		output string
		ahead  int
		behind int
	}{
		{"3\t1\n", 3, 1},
		{"0\t0", 0, 0},
		{"x\t2", 0, 2},
		{"garbage", 0, 0},
		{"", 0, 0},
	}

	for _, tt := range tests {
		ahead, behind := parseAheadBehind(tt.output)
		assert.Equal(t, tt.ahead, ahead, tt.output)
		assert.Equal(t, tt.behind, behind, tt.output)
	}
}
