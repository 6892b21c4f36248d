package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Executor runs a tool call. *service.Registry satisfies it.
type Executor interface {
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// Client is one WebSocket connection
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	executor Executor
	tracer   *tracing.Tracer
	logger   *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, executor Executor, tracer *tracing.Tracer, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, SendQueueSize),
		executor: executor,
		tracer:   tracer,
		logger:   logger.With(zap.String("client_id", id)),
	}
}

// readPump handles inbound frames until the connection fails. In-flight
// invocations are cancelled when it returns.
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	var inflight sync.WaitGroup
	defer func() {
		cancel()
		c.hub.unregister(c)
		c.conn.Close()
		inflight.Wait()
	}()

	c.conn.SetReadLimit(utils.MaxJSONSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.hub.metrics.RecordWSMessage("in", "malformed")
			c.sendError("", "malformed message")
			continue
		}
		c.hub.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "invoke":
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				c.invoke(ctx, msg)
			}()
		case "ping":
			c.sendFrame(map[string]interface{}{"type": "pong"}, "pong")
		default:
			c.sendError(msg.RequestID, fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

// writePump drains the send queue onto the connection and keeps it alive
// with pings. It exits when the hub closes the queue or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) invoke(ctx context.Context, msg types.WSMessage) {
	span, ctx := c.tracer.Start(ctx, "invoke "+msg.ToolID)
	defer span.End()
	span.Set("client_id", c.ID)
	span.Set("request_id", msg.RequestID)

	clientID := c.ID
	traceID := span.TraceID.String()
	result, err := c.executor.Execute(ctx, msg.ToolID, msg.Params, &types.Context{ClientID: &clientID, TraceID: &traceID})
	if err != nil {
		span.Fail(err)
		result, _ = types.Failure(err.Error())
	}

	c.sendFrame(map[string]interface{}{
		"type":       "result",
		"request_id": msg.RequestID,
		"result":     result,
	}, "result")
}

func (c *Client) sendError(requestID, message string) {
	frame := map[string]interface{}{"type": "error", "message": message}
	if requestID != "" {
		frame["request_id"] = requestID
	}
	c.sendFrame(frame, "error")
}

func (c *Client) sendFrame(frame map[string]interface{}, msgType string) {
	data, err := sonic.Marshal(frame)
	if err != nil {
		c.logger.Error("failed to encode frame", zap.Error(err))
		return
	}
	c.hub.send(c, data, msgType)
}
