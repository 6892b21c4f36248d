package tracing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/id"
	"go.uber.org/zap"
)

// Header names used for trace propagation
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

const spanBuffer = 1000

// Span is one traced operation: an HTTP request or a WebSocket invocation.
type Span struct {
	TraceID  id.TraceID
	SpanID   id.SpanID
	ParentID id.SpanID
	Name     string
	Start    time.Time
	Duration time.Duration
	Attrs    map[string]string
	Status   int
	Err      error

	tracer *Tracer
	ended  atomic.Bool
}

// Tracer logs finished spans from a single collector goroutine. A nil
// *Tracer still hands out spans so callers get trace IDs; they are simply
// not recorded.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// New creates a tracer and starts its collector
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.collect()
	return t
}

// Start opens a span, continuing the trace and parent span found in ctx.
func (t *Tracer) Start(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = id.NewTraceID()
	}

	span := &Span{
		TraceID:  traceID,
		SpanID:   id.NewSpanID(),
		ParentID: GetSpanID(ctx),
		Name:     name,
		Start:    time.Now(),
		Attrs:    make(map[string]string),
		tracer:   t,
	}

	ctx = WithTraceID(ctx, traceID)
	return span, context.WithValue(ctx, spanIDKey, span.SpanID)
}

// Set records an attribute. Not safe for use after End.
func (s *Span) Set(key, value string) {
	s.Attrs[key] = value
}

// Fail marks the span as failed
func (s *Span) Fail(err error) {
	s.Err = err
}

// End stamps the duration and hands the span to the collector. Later calls
// are no-ops.
func (s *Span) End() {
	if !s.ended.CompareAndSwap(false, true) {
		return
	}
	s.Duration = time.Since(s.Start)
	if s.tracer != nil {
		s.tracer.submit(s)
	}
}

// Dropped reports how many spans were discarded because the buffer was full
// or the tracer was closed.
func (t *Tracer) Dropped() int64 {
	if t == nil {
		return 0
	}
	return t.dropped.Load()
}

// Close stops the collector after draining buffered spans. Spans ending
// afterwards are dropped.
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.spans)
	t.mu.Unlock()
	<-t.done
}

func (t *Tracer) submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		t.dropped.Add(1)
		return
	}
	select {
	case t.spans <- span:
	default:
		t.dropped.Add(1)
	}
}

func (t *Tracer) collect() {
	defer close(t.done)
	for span := range t.spans {
		t.log(span)
	}
}

func (t *Tracer) log(span *Span) {
	fields := []zap.Field{
		zap.String("service", t.service),
		zap.String("trace_id", span.TraceID.String()),
		zap.String("span_id", span.SpanID.String()),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", span.ParentID.String()))
	}
	if span.Status != 0 {
		fields = append(fields, zap.Int("status", span.Status))
	}
	for k, v := range span.Attrs {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		t.logger.Warn("span failed", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type contextKey int

const (
	traceIDKey contextKey = iota
	spanIDKey
)

// WithTraceID attaches an inbound trace ID to ctx
func WithTraceID(ctx context.Context, traceID id.TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithParentSpan attaches an inbound span ID, making it the parent of the
// next span started from ctx.
func WithParentSpan(ctx context.Context, spanID id.SpanID) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) id.TraceID {
	traceID, _ := ctx.Value(traceIDKey).(id.TraceID)
	return traceID
}

// GetSpanID retrieves the span ID from context
func GetSpanID(ctx context.Context) id.SpanID {
	spanID, _ := ctx.Value(spanIDKey).(id.SpanID)
	return spanID
}
