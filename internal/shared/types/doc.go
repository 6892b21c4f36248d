// Package types provides shared data structures for the Forkspace backend.
//
// Core Types:
//   - Service: Service provider definition
//   - Tool: Service tool specification
//   - Context: Execution context for operations
//   - Result: Standard operation result
//
// Request Types:
//   - ExecuteRequest: Service tool execution
//   - WSMessage: WebSocket invoke/ping frames
//   - Event: Server-pushed event frames
//
// Example Usage:
//
//	result, _ := types.Success(map[string]interface{}{"session_id": "s1"})
package types
