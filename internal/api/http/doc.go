// Package http provides the HTTP handlers for service discovery, tool
// execution and health.
//
//	GET  /                  liveness
//	GET  /health            registry, session and stream stats
//	GET  /services          tool catalog, optional ?category=
//	POST /services/execute  {"tool_id": "...", "params": {...}}
package http
