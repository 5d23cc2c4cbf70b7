package clients

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// fakeClock is a settable time source for the breaker.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures, halfOpenLimit int, timeout time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	cb := NewCircuitBreaker(config.CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       timeout,
		HalfOpenLimit: halfOpenLimit,
	})
	cb.now = clock.now

	return cb, clock
}

// tripAndExpire opens cb and moves the clock past its timeout.
func tripAndExpire(t *testing.T, cb *CircuitBreaker, clock *fakeClock) {
	t.Helper()

	for cb.State() != StateOpen {
		cb.RecordFailure()
	}

	clock.advance(cb.cfg.Timeout)
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb, _ := newTestBreaker(5, 3, 30*time.Second)

	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
	assert.Zero(t, cb.RetryIn())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, 2, 30*time.Second)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "a success resets the count")

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_RetryIn(t *testing.T) {
	cb, clock := newTestBreaker(1, 1, 30*time.Second)

	cb.RecordFailure()
	assert.Equal(t, 30*time.Second, cb.RetryIn())

	clock.advance(12 * time.Second)
	assert.Equal(t, 18*time.Second, cb.RetryIn())

	clock.advance(time.Minute)
	assert.Zero(t, cb.RetryIn())
	assert.Equal(t, StateOpen, cb.State(), "only Allow moves an expired breaker on")
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker(1, 2, time.Second)
	tripAndExpire(t, cb, clock)

	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "third concurrent probe is refused")

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow(), "a finished probe frees a slot")
}

func TestCircuitBreaker_HalfOpenCloses(t *testing.T) {
	cb, clock := newTestBreaker(1, 2, time.Second)
	tripAndExpire(t, cb, clock)

	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())

	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State(), "closed again with a fresh failure budget of one")
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(1, 2, 10*time.Second)
	tripAndExpire(t, cb, clock)

	require.True(t, cb.Allow())
	cb.RecordFailure()

	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
	assert.Equal(t, 10*time.Second, cb.RetryIn())
}

func TestCircuitBreaker_ZeroConfigStillTrips(t *testing.T) {
	cb, clock := newTestBreaker(0, 0, time.Second)

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	clock.advance(time.Second)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb, clock := newTestBreaker(1, 1, time.Second)

	var seen []string
	cb.OnStateChange(func(from, to State) {
		// Reading state from inside the callback must not deadlock.
		seen = append(seen, from.String()+"->"+to.String()+":"+cb.State().String())
	})

	cb.RecordFailure()
	cb.RecordFailure()
	clock.advance(time.Second)
	cb.Allow()
	cb.RecordSuccess()

	assert.Equal(t, []string{
		"closed->open:open",
		"open->half-open:half-open",
		"half-open->closed:closed",
	}, seen)
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(config.CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenLimit: 10})

	var wg sync.WaitGroup

	for i := range 1000 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if !cb.Allow() {
				return
			}

			if i%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		}()
	}

	wg.Wait()

	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(99):     "unknown",
		State(-1):     "unknown",
	}

	for state, want := range tests {
		assert.Equal(t, want, state.String())
	}
}
