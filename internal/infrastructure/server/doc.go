// Package server wires configuration, providers and the HTTP surface into
// a runnable backend.
//
// Routes:
//
//	GET  /                  liveness
//	GET  /health            health and stats
//	GET  /services          tool catalog
//	POST /services/execute  run a tool
//	GET  /metrics           Prometheus exposition
//	GET  /stream            WebSocket event stream and tool invocation
//
// Responses are gzip-compressed when the client accepts it; WebSocket
// upgrades bypass compression.
package server
