package filesystem

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
	"go.uber.org/zap"
)

// Provider exposes sandboxed file operations as service tools.
type Provider struct {
	sandbox *Sandbox
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewProvider creates a filesystem provider. metrics may be nil.
func NewProvider(sandbox *Sandbox, metrics *monitoring.Metrics, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{sandbox: sandbox, metrics: metrics, logger: logger}
}

// Sandbox returns the validator shared with other providers.
func (p *Provider) Sandbox() *Sandbox {
	return p.sandbox
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "filesystem",
		Name:         "Filesystem Service",
		Description:  "Sandboxed file and directory operations inside the home and temp directories",
		Category:     types.CategoryFilesystem,
		Capabilities: []string{"list", "read", "write", "search"},
		Tools: []types.Tool{
			{
				ID:          "filesystem.read_directory",
				Name:        "Read Directory",
				Description: "List a directory, directories first",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Absolute directory path", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "filesystem.read_file",
				Name:        "Read File",
				Description: "Read a UTF-8 text file",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Absolute file path", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "filesystem.write_file",
				Name:        "Write File",
				Description: "Write a text file, creating parent directories",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Absolute file path", Required: true},
					{Name: "content", Type: "string", Description: "File content", Required: true},
				},
				Returns: "number",
			},
			{
				ID:          "filesystem.search",
				Name:        "Search Files",
				Description: "Find files under a directory by glob pattern (supports **)",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Absolute root directory", Required: true},
					{Name: "pattern", Type: "string", Description: "Glob pattern (e.g. '**/*.go')", Required: true},
					{Name: "limit", Type: "number", Description: "Maximum matches (default 500)", Required: false},
				},
				Returns: "array",
			},
		},
	}
}

// Execute runs a filesystem operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "filesystem.read_directory":
		return p.readDirectory(params)
	case "filesystem.read_file":
		return p.readFile(params)
	case "filesystem.write_file":
		return p.writeFile(params)
	case "filesystem.search":
		return p.search(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) readDirectory(params map[string]interface{}) (*types.Result, error) {
	path, ok := utils.GetString(params, "path")
	if !ok || path == "" {
		return types.Failure("path parameter required")
	}

	entries, err := p.ReadDirectory(path)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"path": path, "entries": entries, "count": len(entries)})
}

func (p *Provider) readFile(params map[string]interface{}) (*types.Result, error) {
	path, ok := utils.GetString(params, "path")
	if !ok || path == "" {
		return types.Failure("path parameter required")
	}

	content, err := p.ReadFile(path)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"path": path, "content": content})
}

func (p *Provider) writeFile(params map[string]interface{}) (*types.Result, error) {
	path, ok := utils.GetString(params, "path")
	if !ok || path == "" {
		return types.Failure("path parameter required")
	}
	content, ok := utils.GetString(params, "content")
	if !ok {
		return types.Failure("content parameter required")
	}

	written, err := p.WriteFile(path, content)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"path": path, "written": written})
}

func (p *Provider) search(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	path, ok := utils.GetString(params, "path")
	if !ok || path == "" {
		return types.Failure("path parameter required")
	}
	pattern, ok := utils.GetString(params, "pattern")
	if !ok || pattern == "" {
		return types.Failure("pattern parameter required")
	}
	limit, err := utils.GetInt(params, "limit", DefaultSearchLimit)
	if err != nil {
		return types.Failure(err.Error())
	}

	result, err := p.Search(ctx, path, pattern, limit)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{
		"path":      result.Root,
		"matches":   result.Matches,
		"count":     len(result.Matches),
		"truncated": result.Truncated,
	})
}

// validate checks path shape and runs the sandbox, counting rejections.
func (p *Provider) validate(path string) (string, error) {
	if err := utils.ValidatePath(path, "path"); err != nil {
		return "", err
	}

	validated, err := p.sandbox.Validate(path)
	if err != nil {
		var sbErr *SandboxError
		if errors.As(err, &sbErr) {
			p.metrics.RecordSandboxRejection(sbErr.Reason)
			p.logger.Debug("path rejected",
				zap.String("path", path),
				zap.String("reason", sbErr.Reason),
			)
		}
		return "", err
	}
	return validated, nil
}
