// circuitbreaker.go - Circuit breaker for outbound calls.
//
// Stops webhook deliveries from piling up retries against an endpoint that
// is already down.
package server

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CircuitState represents the current state of a circuit breaker.
type CircuitState int

const (
	// StateClosed: calls flow normally
	StateClosed CircuitState = iota
	// StateOpen: calls fail fast
	StateOpen
	// StateHalfOpen: one trial call decides whether to close again
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned when circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when a half-open circuit already has a
	// trial call in flight.
	ErrTooManyRequests = errors.New("too many requests while circuit is half-open")
)

// CircuitBreaker implements the circuit breaker pattern.
type CircuitBreaker struct {
	mu sync.Mutex

	name        string
	maxFailures uint32        // consecutive failures before opening
	timeout     time.Duration // time to wait before a trial call
	log         zerolog.Logger
	now         func() time.Time

	state            CircuitState
	failures         uint32
	lastFailureTime  time.Time
	halfOpenInFlight bool

	rejected uint64
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(name string, maxFailures uint32, timeout time.Duration, log zerolog.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		timeout:     timeout,
		log:         log,
		now:         time.Now,
	}
}

// Execute runs fn unless the circuit is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn()
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) <= cb.timeout {
			cb.rejected++
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.log.Info().Str("breaker", cb.name).Msg("circuit half-open")
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenInFlight {
			cb.rejected++
			return ErrTooManyRequests
		}
		cb.halfOpenInFlight = true
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	wasHalfOpen := cb.state == StateHalfOpen
	cb.halfOpenInFlight = false

	if err == nil {
		cb.failures = 0
		if wasHalfOpen {
			cb.state = StateClosed
			cb.log.Info().Str("breaker", cb.name).Msg("circuit closed")
		}
		return
	}

	cb.failures++
	cb.lastFailureTime = cb.now()
	if wasHalfOpen || cb.failures >= cb.maxFailures {
		if cb.state != StateOpen {
			cb.log.Warn().Str("breaker", cb.name).Uint32("failures", cb.failures).
				Str("timeout", cb.timeout.String()).Msg("circuit opened")
		}
		cb.state = StateOpen
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Rejected returns how many calls failed fast.
func (cb *CircuitBreaker) Rejected() uint64 {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.rejected
}
