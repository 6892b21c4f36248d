package worktree

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Forkspace/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
	"go.uber.org/zap"
)

// Provider exposes git worktree management as service tools.
type Provider struct {
	git     *Git
	sandbox *filesystem.Sandbox
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewProvider creates a worktree provider. Every path parameter is checked
// against sandbox before git sees it.
func NewProvider(sandbox *filesystem.Sandbox, timeout time.Duration, metrics *monitoring.Metrics, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		git:     NewGit(timeout, logger),
		sandbox: sandbox,
		metrics: metrics,
		logger:  logger,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "worktree",
		Name:         "Worktree Service",
		Description:  "Git worktree and branch management",
		Category:     types.CategoryVCS,
		Capabilities: []string{"list", "create", "remove", "merge", "status"},
		Tools: []types.Tool{
			{
				ID:          "worktree.list",
				Name:        "List Worktrees",
				Description: "List worktrees of a repository, main worktree first",
				Parameters: []types.Parameter{
					{Name: "repo_path", Type: "string", Description: "Repository path", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "worktree.main_repo_path",
				Name:        "Main Repository Path",
				Description: "Resolve the main working tree from any worktree",
				Parameters: []types.Parameter{
					{Name: "current_path", Type: "string", Description: "Path inside a repository or worktree", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "worktree.create",
				Name:        "Create Worktree",
				Description: "Create a worktree on a new branch",
				Parameters: []types.Parameter{
					{Name: "repo_path", Type: "string", Description: "Repository path", Required: true},
					{Name: "worktree_path", Type: "string", Description: "Where to create the worktree", Required: true},
					{Name: "branch_name", Type: "string", Description: "New branch name", Required: true},
					{Name: "base_branch", Type: "string", Description: "Starting point (falls back to HEAD)", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "worktree.remove",
				Name:        "Remove Worktree",
				Description: "Remove a linked worktree",
				Parameters: []types.Parameter{
					{Name: "repo_path", Type: "string", Description: "Repository path", Required: true},
					{Name: "worktree_path", Type: "string", Description: "Worktree to remove", Required: true},
					{Name: "force", Type: "boolean", Description: "Discard local changes", Required: false},
				},
				Returns: "boolean",
			},
			{
				ID:          "worktree.merge",
				Name:        "Merge Branch",
				Description: "Check out the target branch and merge the source branch into it",
				Parameters: []types.Parameter{
					{Name: "repo_path", Type: "string", Description: "Repository path", Required: true},
					{Name: "source_branch", Type: "string", Description: "Branch to merge", Required: true},
					{Name: "target_branch", Type: "string", Description: "Branch to merge into", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "worktree.has_uncommitted_changes",
				Name:        "Has Uncommitted Changes",
				Description: "Report whether a worktree has uncommitted changes",
				Parameters: []types.Parameter{
					{Name: "worktree_path", Type: "string", Description: "Worktree path", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "worktree.branch_info",
				Name:        "Branch Info",
				Description: "Upstream remote and ahead/behind counts for a branch",
				Parameters: []types.Parameter{
					{Name: "repo_path", Type: "string", Description: "Repository path", Required: true},
					{Name: "branch_name", Type: "string", Description: "Branch name", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a worktree operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "worktree.list":
		return p.list(ctx, params)
	case "worktree.main_repo_path":
		return p.mainRepoPath(ctx, params)
	case "worktree.create":
		return p.create(ctx, params)
	case "worktree.remove":
		return p.remove(ctx, params)
	case "worktree.merge":
		return p.merge(ctx, params)
	case "worktree.has_uncommitted_changes":
		return p.hasUncommittedChanges(ctx, params)
	case "worktree.branch_info":
		return p.branchInfo(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) list(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	repo, ok := utils.GetString(params, "repo_path")
	if !ok || repo == "" {
		return types.Failure("repo_path parameter required")
	}

	worktrees, err := p.List(ctx, repo)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"worktrees": worktrees, "count": len(worktrees)})
}

func (p *Provider) mainRepoPath(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	current, ok := utils.GetString(params, "current_path")
	if !ok || current == "" {
		return types.Failure("current_path parameter required")
	}

	path, err := p.MainRepoPath(ctx, current)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"path": path})
}

func (p *Provider) create(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	repo, ok := utils.GetString(params, "repo_path")
	if !ok || repo == "" {
		return types.Failure("repo_path parameter required")
	}
	path, ok := utils.GetString(params, "worktree_path")
	if !ok || path == "" {
		return types.Failure("worktree_path parameter required")
	}
	branch, _ := utils.GetString(params, "branch_name")
	if err := utils.ValidateBranch(branch, "branch_name"); err != nil {
		return types.Failure(err.Error())
	}
	base, _ := utils.GetString(params, "base_branch")
	if base != "" {
		if err := utils.ValidateBranch(base, "base_branch"); err != nil {
			return types.Failure(err.Error())
		}
	}

	wt, err := p.Create(ctx, repo, path, branch, base)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"worktree": wt})
}

func (p *Provider) remove(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	repo, ok := utils.GetString(params, "repo_path")
	if !ok || repo == "" {
		return types.Failure("repo_path parameter required")
	}
	path, ok := utils.GetString(params, "worktree_path")
	if !ok || path == "" {
		return types.Failure("worktree_path parameter required")
	}
	force, err := utils.GetBool(params, "force", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	if err := p.Remove(ctx, repo, path, force); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"success": true})
}

func (p *Provider) merge(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	repo, ok := utils.GetString(params, "repo_path")
	if !ok || repo == "" {
		return types.Failure("repo_path parameter required")
	}
	source, _ := utils.GetString(params, "source_branch")
	if err := utils.ValidateBranch(source, "source_branch"); err != nil {
		return types.Failure(err.Error())
	}
	target, _ := utils.GetString(params, "target_branch")
	if err := utils.ValidateBranch(target, "target_branch"); err != nil {
		return types.Failure(err.Error())
	}

	result, err := p.Merge(ctx, repo, source, target)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{
		"success":   result.Success,
		"message":   result.Message,
		"conflicts": result.Conflicts,
	})
}

func (p *Provider) hasUncommittedChanges(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	path, ok := utils.GetString(params, "worktree_path")
	if !ok || path == "" {
		return types.Failure("worktree_path parameter required")
	}

	dirty, err := p.HasUncommittedChanges(ctx, path)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"has_changes": dirty})
}

func (p *Provider) branchInfo(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	repo, ok := utils.GetString(params, "repo_path")
	if !ok || repo == "" {
		return types.Failure("repo_path parameter required")
	}
	branch, _ := utils.GetString(params, "branch_name")
	if err := utils.ValidateBranch(branch, "branch_name"); err != nil {
		return types.Failure(err.Error())
	}

	info, err := p.BranchInfo(ctx, repo, branch)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"branch": info})
}

// validate runs a path parameter through the sandbox.
func (p *Provider) validate(path, field string) (string, error) {
	if err := utils.ValidatePath(path, field); err != nil {
		return "", err
	}

	validated, err := p.sandbox.Validate(path)
	if err != nil {
		var sbErr *filesystem.SandboxError
		if errors.As(err, &sbErr) {
			p.metrics.RecordSandboxRejection(sbErr.Reason)
		}
		return "", err
	}
	return validated, nil
}
