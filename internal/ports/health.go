package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned by Register for a name already taken.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// DefaultCheckTimeout bounds a single check when the caller's context has
// no earlier deadline.
const DefaultCheckTimeout = 5 * time.Second

// HealthChecker is a component that can report whether it works, e.g. the
// quote store or the remote.
type HealthChecker interface {
	// Name identifies the check in probe output.
	Name() string

	// Check returns nil when the component is usable.
	Check(ctx context.Context) error
}

// HealthRegistry collects checkers at startup and runs them per probe.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the verdict for one check or for the whole service.
type HealthStatus string

const (
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded means only optional checks failed. Quotes can
	// still be listed and added, they just are not syncing.
	HealthStatusDegraded HealthStatus = "degraded"

	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the outcome of one CheckAll.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one checker.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Optional bool          `json:"optional,omitempty"`
	Duration time.Duration `json:"duration"`
}

// optional marks a checker whose failure degrades the service instead of
// taking it out of rotation.
type optional struct {
	HealthChecker
}

// Optional wraps c so that its failure reports degraded, not unhealthy.
// The remote is registered this way: local quotes keep working without it.
func Optional(c HealthChecker) HealthChecker {
	return optional{c}
}

func isOptional(c HealthChecker) bool {
	_, ok := c.(optional)
	return ok
}

// DefaultHealthRegistry runs its checkers concurrently, each under
// DefaultCheckTimeout.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
	timeout  time.Duration
}

func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{timeout: DefaultCheckTimeout}
}

// Register adds checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.checkers {
		if c.Name() == checker.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, checker.Name())
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// Names lists the registered checks in registration order.
func (r *DefaultHealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.checkers))
	for i, c := range r.checkers {
		names[i] = c.Name()
	}

	return names
}

// CheckAll runs every check. The service is unhealthy if a required check
// fails, degraded if only optional ones do.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Go(func() { results[i] = r.run(ctx, c) })
	}
	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, c := range checkers {
		res := results[i]
		out.Checks[c.Name()] = res

		switch {
		case res.Status == HealthStatusHealthy:
		case res.Optional:
			if out.Status == HealthStatusHealthy {
				out.Status = HealthStatusDegraded
			}
		default:
			out.Status = HealthStatusUnhealthy
		}
	}

	return out
}

func (r *DefaultHealthRegistry) run(ctx context.Context, c HealthChecker) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)

	res := &CheckResult{
		Status:   HealthStatusHealthy,
		Optional: isOptional(c),
		Duration: time.Since(start),
	}

	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}

// CheckFunc turns a function into a HealthChecker.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (f CheckFunc) Name() string                    { return f.CheckName }
func (f CheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }
