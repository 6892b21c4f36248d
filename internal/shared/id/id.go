// Package id generates the trace and span identifiers carried in logs and
// response headers.
//
// IDs are monotonic ULIDs prefixed by their kind (trc_*, spn_*). Session
// identifiers are NOT generated here: terminal sessions are keyed by
// caller-chosen strings.
package id

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TraceID identifies a request trace
type TraceID string

// SpanID identifies one operation within a trace
type SpanID string

const (
	TracePrefix = "trc"
	SpanPrefix  = "spn"
)

// Generator produces ULIDs that sort by creation time, including within a
// single millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate returns a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// WithPrefix returns "<prefix>_<ulid>"
func (g *Generator) WithPrefix(prefix string) string {
	return prefix + "_" + g.Generate().String()
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

func generator() *Generator {
	once.Do(func() { defaultGenerator = NewGenerator() })
	return defaultGenerator
}

// NewTraceID generates a new trace ID
func NewTraceID() TraceID {
	return TraceID(generator().WithPrefix(TracePrefix))
}

// NewSpanID generates a new span ID
func NewSpanID() SpanID {
	return SpanID(generator().WithPrefix(SpanPrefix))
}

func (id TraceID) String() string { return string(id) }
func (id SpanID) String() string  { return string(id) }

// Valid reports whether s is "<prefix>_<ulid>".
func Valid(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}

// Time extracts the creation time of a prefixed ID.
func Time(s string) (time.Time, bool) {
	_, rest, ok := strings.Cut(s, "_")
	if !ok {
		return time.Time{}, false
	}
	parsed, err := ulid.ParseStrict(rest)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}
