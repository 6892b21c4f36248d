package worktree

import "time"

// DefaultCommandTimeout bounds a single git invocation.
const DefaultCommandTimeout = 60 * time.Second

// Worktree describes one entry of `git worktree list`.
type Worktree struct {
	Path       string  `json:"path"`
	Head       string  `json:"head"`
	Branch     *string `json:"branch"`
	IsBare     bool    `json:"is_bare"`
	IsDetached bool    `json:"is_detached"`
	IsMain     bool    `json:"is_main"`
}

// MergeResult reports the outcome of a merge. A failed merge is a result,
// not an error.
type MergeResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Conflicts []string `json:"conflicts"`
}

// BranchInfo holds upstream tracking state for a branch.
type BranchInfo struct {
	Name     string  `json:"name"`
	Upstream *string `json:"upstream"`
	Ahead    int     `json:"ahead"`
	Behind   int     `json:"behind"`
}
