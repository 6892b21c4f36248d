// Package main is the entry point for the Forkspace backend server.
//
// The server backs the Forkspace desktop front end:
//
//	Front end (Tauri/React) → Go backend → PTYs, filesystem, git
//
// It provides:
//   - Sandboxed filesystem tools (home and temp directories only)
//   - PTY sessions streamed over a WebSocket
//   - Git worktree management
//   - Prometheus metrics at /metrics
//
// Configuration:
//   - Defaults for development
//   - Settings file (--config or $FORKSPACE_CONFIG, YAML or TOML)
//   - Environment variables (override the file)
//   - CLI flags (override everything)
//
// Usage:
//
//	./forkspace-server --port 8787
//
//	# Development mode (colored logs)
//	./forkspace-server --dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, closing every PTY session
package main
