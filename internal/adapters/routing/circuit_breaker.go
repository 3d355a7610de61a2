package routing

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed lets every call through
	CircuitClosed CircuitState = iota
	// CircuitOpen short-circuits every call until the cooldown ends
	CircuitOpen
	// CircuitHalfOpen lets one trial call through to test recovery
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned while the remote cost service is considered down
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreaker stops calling the remote cost service after maxFailures
// consecutive failures and retries once cooldown has passed
type CircuitBreaker struct {
	maxFailures  int
	cooldown     time.Duration
	now          func() time.Time
	mu           sync.Mutex
	state        CircuitState
	failureCount int
	openedAt     time.Time
}

// NewCircuitBreaker creates a breaker. A nil now uses time.Now.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration, now func() time.Time) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	if now == nil {
		now = time.Now
	}
	return &CircuitBreaker{maxFailures: maxFailures, cooldown: cooldown, now: now}
}

// Call runs fn unless the circuit is open
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failureCount++
		if cb.state == CircuitHalfOpen || cb.failureCount >= cb.maxFailures {
			cb.state = CircuitOpen
			cb.openedAt = cb.now()
		}
		return err
	}
	cb.failureCount = 0
	cb.state = CircuitClosed
	return nil
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
