/*
Package tracing provides request tracing for debugging the backend.

# Overview

A lightweight tracer in the spirit of OpenTelemetry: every HTTP request and
every WebSocket tool invocation gets a span, spans carry ULID-based trace and
span identifiers, and finished spans are logged asynchronously through zap.

# Usage

	tracer := tracing.New("forkspace", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.Start(ctx, "invoke worktree.create")
	defer span.End()

# Trace Format

Traces use HTTP headers for propagation:
  - X-Trace-ID: Unique identifier for entire request flow
  - X-Span-ID: Identifier for current operation

Inbound headers are continued; the response always echoes the IDs in use.
*/
package tracing
