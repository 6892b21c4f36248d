// Package testutil provides mocks shared by backend tests.
package testutil

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/stretchr/testify/mock"
)

// MockServiceProvider is a mock implementation of service.Provider for testing.
type MockServiceProvider struct {
	mock.Mock
}

// Definition mocks the Definition method.
func (m *MockServiceProvider) Definition() types.Service {
	args := m.Called()
	return args.Get(0).(types.Service)
}

// Execute mocks the Execute method.
func (m *MockServiceProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	args := m.Called(ctx, toolID, params, appCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Result), args.Error(1)
}

// NewMockServiceProvider returns a provider whose Definition describes a
// service with one tool per name.
func NewMockServiceProvider(id string, category types.Category, tools ...string) *MockServiceProvider {
	m := new(MockServiceProvider)
	def := types.Service{
		ID:          id,
		Name:        "Mock " + id,
		Description: "Mock service for testing",
		Category:    category,
	}
	for _, tool := range tools {
		def.Tools = append(def.Tools, types.Tool{ID: id + "." + tool, Name: tool})
	}
	m.On("Definition").Return(def)
	return m
}

// Event is one emitted event.
type Event struct {
	Name    string
	Payload interface{}
}

// EventRecorder collects emitted events and is safe for concurrent use.
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records an event.
func (r *EventRecorder) Emit(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: event, Payload: payload})
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
