package types

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
}

// WSMessage represents an inbound WebSocket message
type WSMessage struct {
	Type      string                 `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	ToolID    string                 `json:"tool_id,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// Event is a one-directional push to the front end
type Event struct {
	Type    string      `json:"type"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}
