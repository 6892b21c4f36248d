package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFault = errors.New("fault")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(settings Settings) (*Breaker, *clock) {
	c := &clock{now: time.Unix(1700000000, 0)}
	b := New("test", settings)
	b.now = c.Now
	return b, c
}

func fail() error    { return errFault }
func succeed() error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []func() error
		expected State
	}{
		{"stays closed on successes", []func() error{succeed, succeed, succeed}, StateClosed},
		{"stays closed below threshold", []func() error{fail, fail}, StateClosed},
		{"success resets the count", []func() error{fail, fail, succeed, fail, fail}, StateClosed},
		{"opens at threshold", []func() error{fail, fail, fail}, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBreaker(Settings{Threshold: 3, Cooldown: time.Minute})
			for _, call := range tt.calls {
				_ = b.Do(call)
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Minute})
	require.ErrorIs(t, b.Do(fail), errFault)

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	b, c := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Minute})
	_ = b.Do(fail)

	c.Advance(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	// failed trial reopens
	assert.ErrorIs(t, b.Do(fail), errFault)
	assert.Equal(t, StateOpen, b.State())

	// successful trial closes
	c.Advance(time.Minute)
	assert.NoError(t, b.Do(succeed))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerSingleTrial(t *testing.T) {
	b, c := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Minute})
	_ = b.Do(fail)
	c.Advance(time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- b.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.ErrorIs(t, b.Do(succeed), ErrOpen)
	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIsFault(t *testing.T) {
	expected := errors.New("expected")
	b, _ := newTestBreaker(Settings{
		Threshold: 1,
		IsFault:   func(err error) bool { return err != nil && !errors.Is(err, expected) },
	})

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, b.Do(func() error { return expected }), expected)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerOnStateChange(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(Settings{
		Threshold: 1,
		Cooldown:  time.Second,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = b.Do(fail)
	c.Advance(time.Second)
	_ = b.Do(succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
	assert.Equal(t, "test", b.Name())
}
