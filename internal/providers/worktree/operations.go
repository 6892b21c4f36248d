package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// List returns the worktrees of the repository containing repoPath.
func (p *Provider) List(ctx context.Context, repoPath string) ([]Worktree, error) {
	repo, err := p.validate(repoPath, "repo_path")
	if err != nil {
		return nil, err
	}

	out, err := p.git.Run(ctx, repo, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

// MainRepoPath returns the main working tree for currentPath, which may be
// the main repository itself or any linked worktree.
func (p *Provider) MainRepoPath(ctx context.Context, currentPath string) (string, error) {
	current, err := p.validate(currentPath, "current_path")
	if err != nil {
		return "", err
	}

	common, err := p.git.Output(ctx, current, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(common) {
		joined := filepath.Join(current, common)
		resolved, err := filepath.EvalSymlinks(joined)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		common = resolved
	}

	if filepath.Base(common) == ".git" {
		return filepath.Dir(common), nil
	}
	return common, nil
}

// Create adds a worktree at worktreePath on a new branch started from
// baseBranch. An unresolvable base falls back to HEAD.
func (p *Provider) Create(ctx context.Context, repoPath, worktreePath, branchName, baseBranch string) (*Worktree, error) {
	repo, err := p.validate(repoPath, "repo_path")
	if err != nil {
		return nil, err
	}
	target, err := p.validate(worktreePath, "worktree_path")
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(repo); err != nil {
		return nil, fmt.Errorf("repository path does not exist: %s", repoPath)
	}
	if _, err := p.git.Run(ctx, repo, "rev-parse", "--git-dir"); err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) {
			return nil, fmt.Errorf("not a git repository: %s", repoPath)
		}
		return nil, err
	}

	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", parent, err)
	}

	ref, err := p.resolveBase(ctx, repo, baseBranch)
	if err != nil {
		return nil, err
	}

	if _, err := p.git.Run(ctx, repo, "worktree", "add", "-b", branchName, target, ref); err != nil {
		return nil, err
	}

	head, err := p.git.Output(ctx, target, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	p.logger.Info("worktree created",
		zap.String("path", target),
		zap.String("branch", branchName),
		zap.String("base", ref),
	)

	branch := branchName
	return &Worktree{Path: target, Head: head, Branch: &branch}, nil
}

func (p *Provider) resolveBase(ctx context.Context, repo, baseBranch string) (string, error) {
	if baseBranch != "" {
		if ref, err := p.git.Output(ctx, repo, "rev-parse", "--verify", baseBranch); err == nil {
			return ref, nil
		}
		p.logger.Debug("base branch not found, using HEAD", zap.String("base", baseBranch))
	}

	ref, err := p.git.Output(ctx, repo, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve '%s' and HEAD in %s: %w", baseBranch, repo, err)
	}
	return ref, nil
}

// Remove deletes a linked worktree. force discards local modifications.
func (p *Provider) Remove(ctx context.Context, repoPath, worktreePath string, force bool) error {
	repo, err := p.validate(repoPath, "repo_path")
	if err != nil {
		return err
	}
	target, err := p.validate(worktreePath, "worktree_path")
	if err != nil {
		return err
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, target)

	if _, err := p.git.Run(ctx, repo, args...); err != nil {
		return err
	}
	p.logger.Info("worktree removed", zap.String("path", target), zap.Bool("force", force))
	return nil
}

// Merge checks out targetBranch in repoPath and merges sourceBranch into it.
// Checkout and merge failures are reported in the result.
func (p *Provider) Merge(ctx context.Context, repoPath, sourceBranch, targetBranch string) (*MergeResult, error) {
	repo, err := p.validate(repoPath, "repo_path")
	if err != nil {
		return nil, err
	}

	if _, err := p.git.Run(ctx, repo, "checkout", targetBranch); err != nil {
		var gitErr *GitError
		if !errors.As(err, &gitErr) {
			return nil, err
		}
		return &MergeResult{Message: gitErr.Stderr, Conflicts: []string{}}, nil
	}

	if _, err := p.git.Run(ctx, repo, "merge", sourceBranch, "--no-edit"); err != nil {
		var gitErr *GitError
		if !errors.As(err, &gitErr) {
			return nil, err
		}

		status, err := p.git.Run(ctx, repo, "status", "--porcelain")
		if err != nil {
			return nil, err
		}

		message := gitErr.Stderr
		if strings.TrimSpace(message) == "" {
			message = gitErr.Stdout
		}
		return &MergeResult{Message: message, Conflicts: parseConflicts(status)}, nil
	}

	return &MergeResult{Success: true, Message: "Merge successful", Conflicts: []string{}}, nil
}

// HasUncommittedChanges reports whether the worktree has any staged,
// unstaged or untracked changes.
func (p *Provider) HasUncommittedChanges(ctx context.Context, worktreePath string) (bool, error) {
	dir, err := p.validate(worktreePath, "worktree_path")
	if err != nil {
		return false, err
	}

	out, err := p.git.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// BranchInfo reports the configured remote of branchName and how far it is
// ahead of and behind origin/<branchName>. Missing tracking data is not an error.
func (p *Provider) BranchInfo(ctx context.Context, repoPath, branchName string) (*BranchInfo, error) {
	repo, err := p.validate(repoPath, "repo_path")
	if err != nil {
		return nil, err
	}

	info := &BranchInfo{Name: branchName}

	if remote, err := p.git.Output(ctx, repo, "config", "--get", "branch."+branchName+".remote"); err == nil {
		info.Upstream = &remote
	}

	if out, err := p.git.Run(ctx, repo, "rev-list", "--left-right", "--count", branchName+"...origin/"+branchName); err == nil {
		info.Ahead, info.Behind = parseAheadBehind(out)
	}

	return info, nil
}
