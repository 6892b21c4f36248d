package terminal

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
)

// Provider exposes the session registry as service tools
type Provider struct {
	manager *Manager
}

// NewProvider creates a terminal provider around a manager
func NewProvider(manager *Manager) *Provider {
	return &Provider{manager: manager}
}

// Manager returns the underlying session registry
func (p *Provider) Manager() *Manager {
	return p.manager
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "terminal",
		Name:         "Terminal Service",
		Description:  "Interactive PTY sessions with output streamed as events",
		Category:     types.CategoryTerminal,
		Capabilities: []string{"pty", "shell", "interactive", "resize", "sessions"},
		Tools: []types.Tool{
			{
				ID:          "terminal.create_session",
				Name:        "Create Terminal Session",
				Description: "Spawn a command (default: user's shell) on a new PTY; output arrives as pty-output-<session_id> events",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Caller-chosen unique session identifier (alphanumerics, '-', '_', '/', ':')", Required: true},
					{Name: "working_dir", Type: "string", Description: "Working directory for the child", Required: true},
					{Name: "command", Type: "string", Description: "Command line, split on whitespace", Required: false},
					{Name: "cols", Type: "number", Description: "Initial columns (default 80)", Required: false},
					{Name: "rows", Type: "number", Description: "Initial rows (default 24)", Required: false},
					{Name: "env", Type: "object", Description: "Extra environment variables", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.write",
				Name:        "Write to Terminal",
				Description: "Send input to a session",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session identifier", Required: true},
					{Name: "data", Type: "string", Description: "Input text", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "terminal.resize",
				Name:        "Resize Terminal",
				Description: "Change terminal dimensions",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session identifier", Required: true},
					{Name: "cols", Type: "number", Description: "Columns", Required: true},
					{Name: "rows", Type: "number", Description: "Rows", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "terminal.close",
				Name:        "Close Terminal Session",
				Description: "Hang up and unregister a session",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session identifier", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "terminal.list_sessions",
				Name:        "List Sessions",
				Description: "List registered sessions",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "terminal.get_session",
				Name:        "Get Session",
				Description: "Describe one session",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session identifier", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "terminal.create_session":
		return p.createSession(ctx, params)
	case "terminal.write":
		return p.write(params)
	case "terminal.resize":
		return p.resize(params)
	case "terminal.close":
		return p.close(params)
	case "terminal.list_sessions":
		return p.listSessions()
	case "terminal.get_session":
		return p.getSession(params)
	default:
		return types.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func sessionID(params map[string]interface{}) (string, error) {
	id, _ := utils.GetString(params, "session_id")
	if err := utils.ValidateSessionID(id, "session_id"); err != nil {
		return "", err
	}
	return id, nil
}

func dimensions(params map[string]interface{}, defCols, defRows uint16) (uint16, uint16, error) {
	cols, err := utils.GetInt(params, "cols", int(defCols))
	if err != nil {
		return 0, 0, err
	}
	rows, err := utils.GetInt(params, "rows", int(defRows))
	if err != nil {
		return 0, 0, err
	}
	if err := utils.ValidateDimension(cols, "cols"); err != nil {
		return 0, 0, err
	}
	if err := utils.ValidateDimension(rows, "rows"); err != nil {
		return 0, 0, err
	}
	return uint16(cols), uint16(rows), nil
}

func (p *Provider) createSession(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	id, err := sessionID(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	workingDir, _ := utils.GetString(params, "working_dir")
	if err := utils.ValidatePath(workingDir, "working_dir"); err != nil {
		return types.Failure(err.Error())
	}

	command, _ := utils.GetString(params, "command")
	if err := utils.ValidateString(command, "command", 0, utils.MaxCommandLength, false); err != nil {
		return types.Failure(err.Error())
	}

	cols, rows, err := dimensions(params, p.manager.opts.DefaultCols, p.manager.opts.DefaultRows)
	if err != nil {
		return types.Failure(err.Error())
	}

	env, err := utils.GetStringMap(params, "env")
	if err != nil {
		return types.Failure(err.Error())
	}

	info, err := p.manager.Create(ctx, CreateOptions{
		ID:         id,
		WorkingDir: workingDir,
		Command:    command,
		Cols:       cols,
		Rows:       rows,
		Env:        env,
	})
	if err != nil {
		return types.Failure(err.Error())
	}

	return types.Success(map[string]interface{}{
		"session_id": info.ID,
		"pid":        info.PID,
		"command":    info.Command,
		"cols":       info.Cols,
		"rows":       info.Rows,
	})
}

func (p *Provider) write(params map[string]interface{}) (*types.Result, error) {
	id, err := sessionID(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	data, ok := utils.GetString(params, "data")
	if !ok {
		return types.Failure("data parameter required")
	}
	if len(data) > utils.MaxMessageSize {
		return types.Failure(fmt.Sprintf("data exceeds maximum of %d bytes", utils.MaxMessageSize))
	}

	if err := p.manager.Write(id, []byte(data)); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"success": true})
}

func (p *Provider) resize(params map[string]interface{}) (*types.Result, error) {
	id, err := sessionID(params)
	if err != nil {
		return types.Failure(err.Error())
	}
	if _, ok := params["cols"]; !ok {
		return types.Failure("cols parameter required")
	}
	if _, ok := params["rows"]; !ok {
		return types.Failure("rows parameter required")
	}

	cols, rows, err := dimensions(params, 0, 0)
	if err != nil {
		return types.Failure(err.Error())
	}

	if err := p.manager.Resize(id, cols, rows); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"success": true})
}

func (p *Provider) close(params map[string]interface{}) (*types.Result, error) {
	id, err := sessionID(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	if err := p.manager.Close(id); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"success": true})
}

func (p *Provider) listSessions() (*types.Result, error) {
	sessions := p.manager.List()
	return types.Success(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (p *Provider) getSession(params map[string]interface{}) (*types.Result, error) {
	id, err := sessionID(params)
	if err != nil {
		return types.Failure(err.Error())
	}

	info, err := p.manager.Get(id)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"session": info})
}
