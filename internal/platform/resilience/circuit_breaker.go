package resilience

import (
	"errors"
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

// CircuitBreaker trips after a run of consecutive failures and probes the
// dependency with a bounded number of requests once the open window elapses.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold   int
	openWindow  time.Duration
	probeBudget int

	state     CircuitState
	failures  int
	openUntil time.Time
	probing   int
	probeWins int
	now       func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = 1
	}

	return &CircuitBreaker{
		threshold:   failureThreshold,
		openWindow:  openTimeout,
		probeBudget: halfOpenMaxReq,
		state:       CircuitStateClosed,
		now:         time.Now,
	}
}

// Allow reports whether a request may proceed. In the half-open state it
// also reserves one probe slot; the caller must follow up with RecordSuccess
// or RecordFailure.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Before(b.openUntil) {
			return ErrCircuitOpen
		}
		b.enterHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.probing >= b.probeBudget {
			return ErrCircuitOpen
		}
		b.probing++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.releaseProbe()
		b.probeWins++
		if b.probeWins >= b.probeBudget && b.probing == 0 {
			b.enterClosed()
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.enterOpen()
		}
	case CircuitStateHalfOpen:
		b.releaseProbe()
		b.enterOpen()
	case CircuitStateOpen:
		// A late failure while already open pushes the window out.
		b.openUntil = b.now().Add(b.openWindow)
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && !b.now().Before(b.openUntil) {
		return CircuitStateHalfOpen
	}

	return b.state
}

func (b *CircuitBreaker) releaseProbe() {
	if b.probing > 0 {
		b.probing--
	}
}

func (b *CircuitBreaker) enterClosed() {
	b.state = CircuitStateClosed
	b.failures = 0
	b.probing = 0
	b.probeWins = 0
	b.openUntil = time.Time{}
}

func (b *CircuitBreaker) enterOpen() {
	b.state = CircuitStateOpen
	b.openUntil = b.now().Add(b.openWindow)
	b.probing = 0
	b.probeWins = 0
}

func (b *CircuitBreaker) enterHalfOpen() {
	b.state = CircuitStateHalfOpen
	b.probing = 0
	b.probeWins = 0
}
