package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T) (*gin.Engine, *id.TraceID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tracer := New("test", zap.NewNop())
	t.Cleanup(tracer.Close)

	var seen id.TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/ping", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})
	return router, &seen
}

func TestHTTPMiddlewareGeneratesTrace(t *testing.T) {
	router, seen := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	traceID := w.Header().Get(HeaderTraceID)
	assert.NotEmpty(t, traceID)
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))
	assert.Equal(t, id.TraceID(traceID), *seen)
}

func TestHTTPMiddlewareContinuesInboundTrace(t *testing.T) {
	router, seen := newTestRouter(t)
	traceID := id.NewTraceID()
	parentID := id.NewSpanID()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderTraceID, traceID.String())
	req.Header.Set(HeaderSpanID, parentID.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, traceID.String(), w.Header().Get(HeaderTraceID))
	assert.NotEqual(t, parentID.String(), w.Header().Get(HeaderSpanID))
	assert.Equal(t, traceID, *seen)
}

func TestHTTPMiddlewareIgnoresMalformedTrace(t *testing.T) {
	router, seen := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderTraceID, "trc_inbound")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	got := w.Header().Get(HeaderTraceID)
	assert.NotEqual(t, "trc_inbound", got)
	assert.True(t, id.Valid(got, id.TracePrefix))
	assert.Equal(t, id.TraceID(got), *seen)
}

func TestStartSpanParenting(t *testing.T) {
	tracer := New("test", zap.NewNop())
	defer tracer.Close()

	parent, ctx := tracer.Start(context.Background(), "parent")
	child, _ := tracer.Start(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Empty(t, parent.ParentID)

	child.End()
	parent.End()
}

func TestSpansAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("forkspace", zap.New(core))

	span, _ := tracer.Start(context.Background(), "terminal.write")
	span.Set("tool_id", "terminal.write")
	span.Fail(errors.New("session not found"))
	span.End()
	span.End()
	tracer.Close()

	entries := logs.FilterMessage("span failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "terminal.write", fields["operation"])
	assert.Equal(t, "terminal.write", fields["tool_id"])
	assert.Equal(t, "forkspace", fields["service"])
}

func TestEndAfterCloseIsDropped(t *testing.T) {
	tracer := New("test", zap.NewNop())
	tracer.Close()
	tracer.Close()

	span, _ := tracer.Start(context.Background(), "late")
	span.End()
	assert.Equal(t, int64(1), tracer.Dropped())
}

func TestNilTracerStillIssuesIDs(t *testing.T) {
	var tracer *Tracer

	span, ctx := tracer.Start(context.Background(), "invoke")
	span.End()

	assert.NotEmpty(t, span.TraceID)
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
	assert.Zero(t, tracer.Dropped())
}
