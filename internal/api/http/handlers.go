package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Forkspace/backend/internal/service"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root and health endpoints.
const Version = "0.1.0"

// SessionCounter reports live terminal sessions.
type SessionCounter interface {
	Count() int
}

// ClientCounter reports connected event stream clients.
type ClientCounter interface {
	ClientCount() int
}

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	sessions SessionCounter
	clients  ClientCounter
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, sessions SessionCounter, clients ClientCounter, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		sessions: sessions,
		clients:  clients,
		metrics:  metrics,
		logger:   logger,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "forkspace",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"version":          Version,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"service_registry": h.registry.Stats(),
		"sessions":         gin.H{"active": h.sessions.Count()},
		"stream":           gin.H{"clients": h.clients.ClientCount()},
		"metrics":          h.metrics.GetSnapshot(),
	})
}

// ListServices lists all available services, optionally by ?category=
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		switch cat {
		case types.CategoryFilesystem, types.CategoryTerminal, types.CategoryVCS, types.CategorySystem:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + raw})
			return
		}
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// ExecuteService executes a service tool. Tool-level failures are 200 with
// success=false; only malformed requests and provider faults change the status.
func (h *Handlers) ExecuteService(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxJSONSize)

	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appCtx := &types.Context{}
	if traceID := tracing.GetTraceID(c.Request.Context()); traceID != "" {
		s := traceID.String()
		appCtx.TraceID = &s
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		h.logger.Error("service execution failed", zap.String("tool_id", req.ToolID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
