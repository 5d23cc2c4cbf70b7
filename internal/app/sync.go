package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// SyncTrigger names what started a sync cycle.
type SyncTrigger string

const (
	TriggerTimer   SyncTrigger = "timer"
	TriggerManual  SyncTrigger = "manual"
	TriggerStartup SyncTrigger = "startup"
)

// SyncReport summarizes one sync cycle.
type SyncReport struct {
	Trigger    SyncTrigger
	Pulled     int
	Added      int
	Updated    int
	Conflicts  int
	Pushed     int
	PushFailed int
	StartedAt  time.Time
	Duration   time.Duration
}

// Summary renders the counts as a one-line status message.
func (s SyncReport) Summary() string {
	return fmt.Sprintf("Synced with server: %d added, %d updated, %d conflicts resolved, %d pushed.",
		s.Added, s.Updated, s.Conflicts, s.Pushed)
}

// PushResult counts the outcome of pushing local-only quotes.
type PushResult struct {
	Pushed int
	Failed int
}

// cycleState carries a cycle's intermediate results between executor steps.
type cycleState struct {
	baseLen int
	pulled  int
	merged  []domain.Quote
	merge   domain.MergeResult
	push    PushResult
}

func (c *cycleState) report(trigger SyncTrigger, startedAt, finishedAt time.Time) SyncReport {
	return SyncReport{
		Trigger:    trigger,
		Pulled:     c.pulled,
		Added:      c.merge.Added,
		Updated:    c.merge.Updated,
		Conflicts:  c.merge.Conflicts,
		Pushed:     c.push.Pushed,
		PushFailed: c.push.Failed,
		StartedAt:  startedAt,
		Duration:   finishedAt.Sub(startedAt),
	}
}

// Pull fetches the remote list. Local state is not touched.
func (r *Reconciler) Pull(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := r.startSpan(ctx, "pull quotes", attribute.Int("sync.pull_limit", r.pullLimit))
	defer span.End()

	quotes, err := r.remote.Pull(ctx, r.pullLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("pulling quotes: %w", err)
	}

	span.SetAttributes(attribute.Int("sync.pulled", len(quotes)))

	return quotes, nil
}

// Merge applies remote to the current list with the server-wins rules and
// persists the result.
func (r *Reconciler) Merge(ctx context.Context, remote []domain.Quote) (domain.MergeResult, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return domain.MergeResult{}, ErrSyncInProgress
	}
	defer r.release(ctx)

	base := r.snapshot()
	merged, result := domain.Merge(base, remote)

	if err := r.commit(ctx, len(base), merged); err != nil {
		return result, err
	}

	return result, nil
}

// PushUnsynced creates every local-only quote on the remote and attaches the
// returned server IDs. Individual failures are counted and skipped.
func (r *Reconciler) PushUnsynced(ctx context.Context) (PushResult, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return PushResult{}, ErrSyncInProgress
	}
	defer r.release(ctx)

	base := r.snapshot()
	pushed, result := r.pushAll(ctx, base)

	if result.Pushed == 0 {
		return result, nil
	}

	if err := r.commit(ctx, len(base), pushed); err != nil {
		return result, err
	}

	return result, nil
}

// pushAll returns a copy of quotes with server IDs attached to every quote
// the remote accepted. Quotes that already have a server ID are never sent.
func (r *Reconciler) pushAll(ctx context.Context, quotes []domain.Quote) ([]domain.Quote, PushResult) {
	out := slices.Clone(quotes)

	var pending []int
	for i, q := range out {
		if !q.Synced() {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 {
		return out, PushResult{}
	}

	ctx, span := r.startSpan(ctx, "push quotes", attribute.Int("sync.pending", len(pending)))
	defer span.End()

	logger := r.logFor(ctx)

	var result PushResult

	create := func(ctx context.Context, i int) (string, error) {
		return r.remote.Create(ctx, out[i])
	}

	for n, res := range MapLimit(ctx, r.pushConcurrency, pending, create) {
		q := &out[pending[n]]

		err := res.Err
		if err == nil && res.Value == "" {
			err = errors.New("remote returned an empty server id")
		}

		if err != nil {
			result.Failed++
			logger.WarnContext(ctx, "push failed, will retry next cycle",
				slog.String("quote_id", q.ID),
				slog.Any("error", err),
			)

			continue
		}

		q.ServerID = res.Value
		result.Pushed++
	}

	span.SetAttributes(
		attribute.Int("sync.pushed", result.Pushed),
		attribute.Int("sync.push_failed", result.Failed),
	)

	return out, result
}

// SyncCycle pulls, merges, pushes and persists as one guarded cycle.
//
// Steps map onto the executor as validate, perform (pull), verify (merge),
// archive (push, commit, persist) and respond (report). A pull failure
// leaves local state untouched. If persisting fails after the commit, the
// in-memory list keeps the server IDs the remote already assigned and the
// error is reported from the archive step.
//
// A cycle requested while another holds the guard returns ErrSyncInProgress
// without doing any work.
func (r *Reconciler) SyncCycle(ctx context.Context, trigger SyncTrigger) (SyncReport, error) {
	if !r.busy.CompareAndSwap(false, true) {
		r.metrics.recordSkipped(ctx, trigger)
		return SyncReport{Trigger: trigger}, ErrSyncInProgress
	}
	defer r.release(ctx)

	ctx, span := r.startSpan(ctx, "sync cycle", attribute.String("sync.trigger", string(trigger)))
	defer span.End()
	ctx = logging.WithSpan(ctx, r.logger)

	startedAt := r.now()
	state := &cycleState{}

	op := Operation[SyncTrigger, []domain.Quote, *cycleState, SyncReport]{
		Name: "sync_cycle",
		Validate: func(ctx context.Context, trigger SyncTrigger) error {
			if trigger == "" {
				return domain.NewValidationError("trigger", "is required")
			}

			return ctx.Err()
		},
		Perform: func(ctx context.Context, _ SyncTrigger) ([]domain.Quote, error) {
			return r.Pull(ctx)
		},
		Verify: func(_ context.Context, _ SyncTrigger, pulled []domain.Quote) (*cycleState, error) {
			base := r.snapshot()
			merged, result := domain.Merge(base, pulled)

			if id, ok := firstDuplicateID(merged); ok {
				return nil, domain.NewConflictError("quote", fmt.Sprintf("merge produced duplicate id %q", id))
			}

			state.baseLen = len(base)
			state.pulled = len(pulled)
			state.merged = merged
			state.merge = result

			return state, nil
		},
		Archive: func(ctx context.Context, _ SyncTrigger, st *cycleState) error {
			pushed, result := r.pushAll(ctx, st.merged)
			st.push = result

			return r.commit(ctx, st.baseLen, pushed)
		},
		Respond: func(_ context.Context, trigger SyncTrigger, st *cycleState) (SyncReport, error) {
			return st.report(trigger, startedAt, r.now()), nil
		},
	}

	report, err := Execute(ctx, r.exec, op, trigger)
	if err != nil {
		report = state.report(trigger, startedAt, r.now())

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.metrics.recordFailure(ctx, trigger)
		r.notify(ctx, ports.NotificationError, "Sync failed: "+failureReason(err))

		return report, err
	}

	span.SetAttributes(
		attribute.Int("sync.added", report.Added),
		attribute.Int("sync.updated", report.Updated),
		attribute.Int("sync.conflicts", report.Conflicts),
	)
	r.metrics.recordSuccess(ctx, report)

	r.logFor(ctx).InfoContext(ctx, "sync cycle completed",
		slog.String("trigger", string(trigger)),
		slog.Int("pulled", report.Pulled),
		slog.Int("added", report.Added),
		slog.Int("updated", report.Updated),
		slog.Int("conflicts", report.Conflicts),
		slog.Int("pushed", report.Pushed),
		slog.Int("push_failed", report.PushFailed),
		slog.Duration("duration", report.Duration),
	)
	r.notify(ctx, ports.NotificationSuccess, report.Summary())

	if report.PushFailed > 0 {
		r.notify(ctx, ports.NotificationError,
			fmt.Sprintf("%d quotes could not be pushed and will be retried.", report.PushFailed))
	}

	return report, nil
}

func firstDuplicateID(quotes []domain.Quote) (string, bool) {
	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if _, ok := seen[q.ID]; ok {
			return q.ID, true
		}
		seen[q.ID] = struct{}{}
	}

	return "", false
}

// failureReason strips the executor step prefix so notices read naturally.
func failureReason(err error) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) && execErr.Cause != nil {
		return execErr.Cause.Error()
	}

	return err.Error()
}
