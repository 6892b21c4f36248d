package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Threshold is the number of consecutive faults that opens the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before allowing a trial request.
	Cooldown time.Duration
	// IsFault decides whether an error counts against the breaker. nil
	// counts every non-nil error.
	IsFault func(err error) bool
	// OnStateChange is called whenever the state changes, with the lock released.
	OnStateChange func(name string, from, to State)
}

// Breaker stops calling a failing dependency for a cooldown period, then lets
// a single trial request through to decide whether to close again.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	faults   int
	openedAt time.Time
	probing  bool
}

// New creates a breaker. Zero settings mean 5 faults and a 30s cooldown.
func New(name string, settings Settings) *Breaker {
	if settings.Threshold <= 0 {
		settings.Threshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.IsFault == nil {
		settings.IsFault = func(err error) bool { return err != nil }
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Do runs fn unless the breaker is open. fn's error is returned unchanged.
func (b *Breaker) Do(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn()
	b.after(b.settings.IsFault(err))
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	from := b.state

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.settings.Cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.probing = true
	case StateHalfOpen:
		if b.probing {
			b.mu.Unlock()
			return ErrOpen
		}
		b.probing = true
	}

	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return nil
}

func (b *Breaker) after(fault bool) {
	b.mu.Lock()
	from := b.state

	switch {
	case !fault:
		b.faults = 0
		b.state = StateClosed
	case b.state == StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
	default:
		b.faults++
		if b.faults >= b.settings.Threshold {
			b.state = StateOpen
			b.openedAt = b.now()
		}
	}
	if from == StateHalfOpen {
		b.probing = false
	}
	if b.state == StateOpen {
		b.faults = 0
	}

	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
