package tracing

import (
	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span per request, continuing well-formed
// X-Trace-ID/X-Span-ID headers and echoing the IDs in use on the response.
// Malformed inbound IDs are ignored.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(HeaderTraceID); id.Valid(traceID, id.TracePrefix) {
			ctx = WithTraceID(ctx, id.TraceID(traceID))
		}
		if parentID := c.GetHeader(HeaderSpanID); id.Valid(parentID, id.SpanPrefix) {
			ctx = WithParentSpan(ctx, id.SpanID(parentID))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}

		span, ctx := tracer.Start(ctx, c.Request.Method+" "+name)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, span.TraceID.String())
		c.Header(HeaderSpanID, span.SpanID.String())

		c.Next()

		span.Status = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.Fail(c.Errors.Last())
		}
	}
}
