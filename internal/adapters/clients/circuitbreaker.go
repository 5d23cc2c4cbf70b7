package clients

import (
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// State is the position of a CircuitBreaker.
type State int

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

// CircuitBreaker keeps the sync loop off the remote while it is failing.
//
// Closed, it counts consecutive failures and opens at MaxFailures. Open, it
// refuses calls until Timeout has passed since the last failure, then turns
// half-open. Half-open, it lets up to HalfOpenLimit probes run at once;
// HalfOpenLimit successes close it and one failure opens it again.
type CircuitBreaker struct {
	cfg config.CircuitBreakerConfig
	now func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	probes      int // in flight while half-open
	succeeded   int // probes that succeeded
	lastFailure time.Time
	onChange    func(from, to State)
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = 1
	}

	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to run after each transition. fn runs on the
// caller's goroutine once the breaker's lock is released, so it may call
// back into the breaker.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	cb.onChange = fn
	cb.mu.Unlock()
}

// Allow reports whether a call may go out now. A caller that gets true must
// report the outcome with RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	var (
		ok   bool
		from = cb.state
	)

	switch cb.state {
	case StateClosed:
		ok = true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.cfg.Timeout {
			cb.moveTo(StateHalfOpen)
			cb.probes = 1
			ok = true
		}
	case StateHalfOpen:
		if cb.probes < cb.cfg.HalfOpenLimit {
			cb.probes++
			ok = true
		}
	}

	cb.unlock(from)

	return ok
}

// RecordSuccess reports a call that went through.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes--
		cb.succeeded++

		if cb.succeeded >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	}

	cb.unlock(from)
}

// RecordFailure reports a call that failed after any retries.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	from := cb.state
	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++

		if cb.failures >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		cb.moveTo(StateOpen)
	}

	cb.unlock(from)
}

// State returns the current state without advancing an expired open
// breaker; only Allow does that.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// RetryIn returns how long an open breaker keeps refusing calls. It is
// zero in every other state and once the timeout has passed.
func (cb *CircuitBreaker) RetryIn() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return 0
	}

	return max(cb.cfg.Timeout-cb.now().Sub(cb.lastFailure), 0)
}

// moveTo switches state and clears the counters. Callers hold mu.
func (cb *CircuitBreaker) moveTo(to State) {
	cb.state = to
	cb.failures = 0
	cb.succeeded = 0

	if to != StateHalfOpen {
		cb.probes = 0
	}
}

// unlock releases mu and reports a transition away from from, if any.
func (cb *CircuitBreaker) unlock(from State) {
	to := cb.state
	fn := cb.onChange
	cb.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}
