package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// syncMetrics holds the sync counters exported through OpenTelemetry.
type syncMetrics struct {
	cycles    metric.Int64Counter
	added     metric.Int64Counter
	updated   metric.Int64Counter
	conflicts metric.Int64Counter
	pushed    metric.Int64Counter
	duration  metric.Float64Histogram
}

func newSyncMetrics(meter metric.Meter) (*syncMetrics, error) {
	cycles, err := meter.Int64Counter("quotesync.sync.cycles",
		metric.WithDescription("Sync cycles by trigger and result"))
	if err != nil {
		return nil, fmt.Errorf("creating cycles counter: %w", err)
	}

	added, err := meter.Int64Counter("quotesync.sync.added",
		metric.WithDescription("Remote quotes appended to the local list"))
	if err != nil {
		return nil, fmt.Errorf("creating added counter: %w", err)
	}

	updated, err := meter.Int64Counter("quotesync.sync.updated",
		metric.WithDescription("Local quotes updated from the remote"))
	if err != nil {
		return nil, fmt.Errorf("creating updated counter: %w", err)
	}

	conflicts, err := meter.Int64Counter("quotesync.sync.conflicts",
		metric.WithDescription("Content conflicts resolved in favor of the remote"))
	if err != nil {
		return nil, fmt.Errorf("creating conflicts counter: %w", err)
	}

	pushed, err := meter.Int64Counter("quotesync.sync.pushed",
		metric.WithDescription("Local quotes created on the remote"))
	if err != nil {
		return nil, fmt.Errorf("creating pushed counter: %w", err)
	}

	duration, err := meter.Float64Histogram("quotesync.sync.duration",
		metric.WithDescription("Duration of completed sync cycles"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &syncMetrics{
		cycles:    cycles,
		added:     added,
		updated:   updated,
		conflicts: conflicts,
		pushed:    pushed,
		duration:  duration,
	}, nil
}

func (m *syncMetrics) recordSuccess(ctx context.Context, report SyncReport) {
	attrs := metric.WithAttributes(attribute.String("trigger", string(report.Trigger)))

	m.cycles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", string(report.Trigger)),
		attribute.String("result", "success"),
	))
	m.added.Add(ctx, int64(report.Added), attrs)
	m.updated.Add(ctx, int64(report.Updated), attrs)
	m.conflicts.Add(ctx, int64(report.Conflicts), attrs)
	m.pushed.Add(ctx, int64(report.Pushed), attrs)
	m.duration.Record(ctx, report.Duration.Seconds(), attrs)
}

func (m *syncMetrics) recordFailure(ctx context.Context, trigger SyncTrigger) {
	m.cycles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", string(trigger)),
		attribute.String("result", "error"),
	))
}

func (m *syncMetrics) recordSkipped(ctx context.Context, trigger SyncTrigger) {
	m.cycles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", string(trigger)),
		attribute.String("result", "skipped"),
	))
}
