package ws

import (
	"sync"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// SendQueueSize is the number of frames buffered per client before the
// client is considered too slow and disconnected.
const SendQueueSize = 256

// Hub tracks connected clients and fans events out to them. Emit never
// blocks: a client whose queue is full is evicted.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool

	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHub creates an empty hub. metrics and logger may be nil.
func NewHub(metrics *monitoring.Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		metrics: metrics,
		logger:  logger,
	}
}

// Emit broadcasts a named event to every connected client.
func (h *Hub) Emit(event string, payload interface{}) {
	data, err := sonic.Marshal(types.Event{Type: "event", Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.enqueueLocked(client, data, "event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	h.metrics.IncWSConnections()
	h.logger.Debug("client connected", zap.String("client_id", client.ID))
	return true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// send queues a frame for one client. It is a no-op once the client is gone.
func (h *Hub) send(client *Client, data []byte, msgType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		h.enqueueLocked(client, data, msgType)
	}
}

func (h *Hub) enqueueLocked(client *Client, data []byte, msgType string) {
	select {
	case client.send <- data:
		h.metrics.RecordWSMessage("out", msgType)
	default:
		h.logger.Warn("client send queue full, disconnecting", zap.String("client_id", client.ID))
		h.metrics.IncWSEvicted()
		h.removeLocked(client)
	}
}

// removeLocked closes the client's queue exactly once; the write pump then
// sends a close frame and tears the connection down.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.metrics.DecWSConnections()
	h.logger.Debug("client disconnected", zap.String("client_id", client.ID))
}
