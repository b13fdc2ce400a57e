package clients

import (
	"errors"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

var (
	// ErrCircuitOpen is returned without contacting the remote while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// State is a circuit breaker state.
type State int

// Breaker states.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Counts is a point-in-time view of a breaker.
type Counts struct {
	State State

	// Streak is consecutive failures while closed, consecutive successes
	// while half-open, and zero while open.
	Streak int

	// Probes is the number of half-open requests still in flight.
	Probes int

	// OpenedAt is when the breaker last tripped.
	OpenedAt time.Time
}

// CircuitBreaker stops calling the remote after MaxFailures failed calls in a
// row. Once Timeout has passed it admits up to HalfOpenLimit probes; that many
// successes close it again and any failure reopens it.
type CircuitBreaker struct {
	cfg config.CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    State
	streak   int
	probes   int
	openedAt time.Time
	notify   func(from, to State)
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg: config.CircuitBreakerConfig{
			MaxFailures:   max(cfg.MaxFailures, 1),
			Timeout:       cfg.Timeout,
			HalfOpenLimit: max(cfg.HalfOpenLimit, 1),
		},
		now: time.Now,
	}
}

// OnStateChange registers fn to run, on its own goroutine, after every
// transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	cb.notify = fn
	cb.mu.Unlock()
}

// Allow reports whether a call may go out. An open breaker whose timeout has
// elapsed turns half-open and admits the caller as its first probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return false
		}

		cb.moveTo(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.probes++
	}

	return true
}

// RecordSuccess reports a call that reached the remote.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.streak = 0
	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		cb.streak++

		if cb.streak >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	}
}

// RecordFailure reports a call that failed after all retries.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.streak++

		if cb.streak >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		cb.moveTo(StateOpen)
	case StateOpen:
		cb.openedAt = cb.now()
	}
}

// State returns the current state without advancing it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// Counts returns the current state and counters.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Counts{State: cb.state, Streak: cb.streak, Probes: cb.probes, OpenedAt: cb.openedAt}
}

// moveTo must be called with mu held.
func (cb *CircuitBreaker) moveTo(to State) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.streak = 0

	switch to {
	case StateOpen:
		cb.openedAt = cb.now()
		cb.probes = 0
	case StateClosed:
		cb.probes = 0
	}

	if fn := cb.notify; fn != nil {
		go fn(from, to)
	}
}
