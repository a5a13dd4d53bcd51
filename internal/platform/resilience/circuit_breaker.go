package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards one outbound dependency: the account service, the
// webhook sink or QStash. A nil breaker lets every call through.
type CircuitBreaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	openTimeout      time.Duration
	trialLimit       int
	onStateChange    func(name string, from, to CircuitState)

	state          CircuitState
	failures       int
	openedAt       time.Time
	trialsInFlight int
	trialSuccesses int
	now            func() time.Time
}

type transition struct {
	from, to CircuitState
}

func newCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg = NormalizeCircuitBreakerConfig(cfg)
	return &CircuitBreaker{
		name:             cfg.Name,
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		trialLimit:       cfg.HalfOpenMaxReq,
		onStateChange:    cfg.OnStateChange,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// Execute runs fn behind the breaker. Only errors classified by isFailure
// count against the dependency; a nil isFailure counts every error.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if b == nil {
		return fn()
	}
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return err
}

// Allow admits a call, or rejects it with ErrCircuitOpen naming the
// dependency and the time left before trial calls are admitted.
func (b *CircuitBreaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	moved, err := b.allowLocked()
	b.mu.Unlock()

	b.announce(moved)
	return err
}

func (b *CircuitBreaker) allowLocked() (transition, error) {
	var moved transition
	if b.state == CircuitStateOpen {
		if wait := b.openTimeout - b.now().Sub(b.openedAt); wait > 0 {
			return moved, fmt.Errorf("%w: %s retry in %s", ErrCircuitOpen, b.name, wait.Round(time.Millisecond))
		}
		moved = b.moveLocked(CircuitStateHalfOpen)
	}

	if b.state == CircuitStateHalfOpen {
		if b.trialsInFlight >= b.trialLimit {
			return moved, fmt.Errorf("%w: %s trial calls in flight", ErrCircuitOpen, b.name)
		}
		b.trialsInFlight++
	}
	return moved, nil
}

func (b *CircuitBreaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	var moved transition
	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.trialsInFlight = max(b.trialsInFlight-1, 0)
		b.trialSuccesses++
		if b.trialSuccesses >= b.trialLimit && b.trialsInFlight == 0 {
			moved = b.moveLocked(CircuitStateClosed)
		}
	}
	b.mu.Unlock()

	b.announce(moved)
}

func (b *CircuitBreaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	var moved transition
	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			moved = b.moveLocked(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		moved = b.moveLocked(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
	b.mu.Unlock()

	b.announce(moved)
}

// State reports half-open once the open timeout has elapsed, even before the
// next call moves the breaker there.
func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) moveLocked(to CircuitState) transition {
	moved := transition{from: b.state, to: to}
	b.state = to
	b.failures = 0
	b.trialsInFlight = 0
	b.trialSuccesses = 0
	switch to {
	case CircuitStateOpen:
		b.openedAt = b.now()
	case CircuitStateClosed:
		b.openedAt = time.Time{}
	}
	return moved
}

// announce runs the state change callback outside the lock.
func (b *CircuitBreaker) announce(moved transition) {
	if moved.from == moved.to || b.onStateChange == nil {
		return
	}
	b.onStateChange(b.name, moved.from, moved.to)
}
