/*
Package monitoring provides Prometheus metrics for the backend.

# Overview

Each Metrics value owns a private registry, so tests and embedded servers can
build as many as they like without duplicate-registration panics. Methods are
nil-safe; a component given a nil *Metrics simply records nothing.

# Features

- HTTP request metrics (latency, throughput, size)
- Service tool call metrics (duration, errors)
- PTY session lifecycle and relayed output volume
- Sandbox rejections by reason
- WebSocket connection, message and eviction counts
- Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics, "/metrics"))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "terminal", "create_session")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
