package worktree

import (
	"strconv"
	"strings"
)

// parseWorktreeList parses `git worktree list --porcelain`. Blocks are
// separated by blank lines; the first block is the main worktree. A final
// block without a trailing blank line is still included.
func parseWorktreeList(output string) []Worktree {
	var (
		worktrees []Worktree
		current   Worktree
	)

	flush := func() {
		if current.Path != "" {
			current.IsMain = len(worktrees) == 0
			worktrees = append(worktrees, current)
		}
		current = Worktree{}
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			branch := strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
			current.Branch = &branch
		case line == "bare":
			current.IsBare = true
		case line == "detached":
			current.IsDetached = true
		}
	}
	flush()

	if worktrees == nil {
		worktrees = []Worktree{}
	}
	return worktrees
}

// parseConflicts extracts unmerged paths (UU, AA, DD) from `git status --porcelain`.
func parseConflicts(status string) []string {
	conflicts := []string{}
	for _, line := range strings.Split(status, "\n") {
		if len(line) < 4 {
			continue
		}
		switch line[:2] {
		case "UU", "AA", "DD":
			conflicts = append(conflicts, line[3:])
		}
	}
	return conflicts
}

// parseAheadBehind parses `rev-list --left-right --count` output. Anything
// unparsable counts as zero.
func parseAheadBehind(output string) (ahead, behind int) {
	parts := strings.Split(strings.TrimSpace(output), "\t")
	if len(parts) != 2 {
		return 0, 0
	}
	ahead, _ = strconv.Atoi(parts[0])
	behind, _ = strconv.Atoi(parts[1])
	return ahead, behind
}
