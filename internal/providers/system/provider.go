package system

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
	"go.uber.org/zap"
)

// Info is the static environment reported by system.info
type Info struct {
	Version      string
	Home         string
	Temp         string
	DefaultShell string
}

// Provider implements environment information and front-end log forwarding
type Provider struct {
	info      Info
	startedAt time.Time
	logs      *LogBuffer
	logger    *zap.Logger
}

// NewProvider creates a system provider. Forwarded front-end logs are
// written to logger and kept in memory for system.get_logs.
func NewProvider(info Info, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		info:      info,
		startedAt: time.Now(),
		logs:      NewLogBuffer(1000),
		logger:    logger,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "system",
		Name:         "System Service",
		Description:  "Backend environment and front-end log forwarding",
		Category:     types.CategorySystem,
		Capabilities: []string{"info", "logging"},
		Tools: []types.Tool{
			{
				ID:          "system.info",
				Name:        "System Info",
				Description: "Platform, sandbox roots, default shell and uptime",
				Returns:     "object",
			},
			{
				ID:          "system.ping",
				Name:        "Ping",
				Description: "Round-trip check",
				Returns:     "object",
			},
			{
				ID:          "system.log",
				Name:        "Log",
				Description: "Write a front-end message to the backend log",
				Parameters: []types.Parameter{
					{Name: "message", Type: "string", Description: "Log message", Required: true},
					{Name: "level", Type: "string", Description: "debug, info, warn or error (default info)", Required: false},
					{Name: "source", Type: "string", Description: "Front-end component", Required: false},
				},
				Returns: "boolean",
			},
			{
				ID:          "system.get_logs",
				Name:        "Get Logs",
				Description: "Recent forwarded log entries, newest first",
				Parameters: []types.Parameter{
					{Name: "limit", Type: "number", Description: "Maximum entries (default 100)", Required: false},
					{Name: "level", Type: "string", Description: "Only this level", Required: false},
				},
				Returns: "array",
			},
		},
	}
}

// Execute runs a system operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "system.info":
		return p.systemInfo()
	case "system.ping":
		return types.Success(map[string]interface{}{"pong": true, "timestamp": time.Now().Unix()})
	case "system.log":
		return p.log(params, appCtx)
	case "system.get_logs":
		return p.getLogs(params)
	default:
		return types.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) systemInfo() (*types.Result, error) {
	return types.Success(map[string]interface{}{
		"version":        p.info.Version,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"go_version":     runtime.Version(),
		"home":           p.info.Home,
		"temp":           p.info.Temp,
		"default_shell":  p.info.DefaultShell,
		"uptime_seconds": time.Since(p.startedAt).Seconds(),
	})
}

func (p *Provider) log(params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	message, ok := utils.GetString(params, "message")
	if !ok || message == "" {
		return types.Failure("message parameter required")
	}
	level, _ := utils.GetString(params, "level")
	if level == "" {
		level = "info"
	}
	source, _ := utils.GetString(params, "source")

	entry := LogEntry{Timestamp: time.Now(), Level: level, Message: message, Source: source}
	if appCtx != nil && appCtx.ClientID != nil {
		entry.ClientID = *appCtx.ClientID
	}

	fields := []zap.Field{zap.String("source", source), zap.String("client_id", entry.ClientID)}
	switch level {
	case "debug":
		p.logger.Debug(message, fields...)
	case "info":
		p.logger.Info(message, fields...)
	case "warn":
		p.logger.Warn(message, fields...)
	case "error":
		p.logger.Error(message, fields...)
	default:
		return types.Failure(fmt.Sprintf("invalid level: %s", level))
	}

	p.logs.Add(entry)
	return types.Success(map[string]interface{}{"logged": true})
}

func (p *Provider) getLogs(params map[string]interface{}) (*types.Result, error) {
	limit, err := utils.GetInt(params, "limit", 100)
	if err != nil {
		return types.Failure(err.Error())
	}
	if limit < 1 {
		return types.Failure("limit must be positive")
	}
	level, _ := utils.GetString(params, "level")

	logs := p.logs.Recent(limit, level)
	return types.Success(map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}
