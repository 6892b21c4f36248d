package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
	"go.uber.org/zap"
)

// Provider interface for service implementations
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// Registry manages service discovery and execution
type Registry struct {
	mu       sync.RWMutex
	services map[string]Provider

	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewRegistry creates a new service registry. metrics and logger may be nil.
func NewRegistry(metrics *monitoring.Metrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		services: make(map[string]Provider),
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds a service provider
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.services[def.ID]; exists {
		return fmt.Errorf("service already registered: %s", def.ID)
	}
	r.services[def.ID] = provider
	return nil
}

// Get retrieves a service by ID
func (r *Registry) Get(serviceID string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.services[serviceID]
	return p, ok
}

// List returns registered services ordered by ID, optionally filtered by category
func (r *Registry) List(category *types.Category) []types.Service {
	r.mu.RLock()
	providers := make([]Provider, 0, len(r.services))
	for _, p := range r.services {
		providers = append(providers, p)
	}
	r.mu.RUnlock()

	services := make([]types.Service, 0, len(providers))
	for _, p := range providers {
		def := p.Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// Execute runs a service tool. Unknown tools and malformed IDs produce a
// failed Result rather than an error; errors are reserved for provider faults.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if err := utils.ValidateToolID(toolID, "tool_id", true); err != nil {
		return types.Failure(err.Error())
	}

	serviceID, tool, ok := strings.Cut(toolID, ".")
	if !ok || tool == "" {
		return types.Failure(fmt.Sprintf("invalid tool ID format: %s", toolID))
	}

	provider, ok := r.Get(serviceID)
	if !ok {
		return types.Failure(fmt.Sprintf("service not found: %s", serviceID))
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	timer := monitoring.NewTimer(r.metrics, serviceID, tool)
	result, err := provider.Execute(ctx, toolID, params, appCtx)

	switch {
	case err != nil:
		timer.Stop("error")
		r.logger.Error("tool execution failed", zap.String("tool_id", toolID), zap.Error(err))
	case result != nil && !result.Success:
		timer.Stop("failure")
		r.logger.Debug("tool returned failure", zap.String("tool_id", toolID), zap.Stringp("error", result.Error))
	default:
		timer.Stop("success")
	}

	return result, err
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	services := r.List(nil)

	totalTools := 0
	categories := make(map[string]int)
	for _, def := range services {
		totalTools += len(def.Tools)
		categories[string(def.Category)]++
	}

	return map[string]interface{}{
		"total_services": len(services),
		"total_tools":    totalTools,
		"categories":     categories,
	}
}
