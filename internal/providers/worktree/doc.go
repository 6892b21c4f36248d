// Package worktree manages git worktrees for forked workspaces.
//
// Every operation shells out to git with `-C <dir>` and surfaces git's
// stderr as the error message. Paths are checked by the filesystem sandbox
// first, so worktrees can only live under the home or temp directory.
package worktree
