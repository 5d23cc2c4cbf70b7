package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Syncer runs one sync cycle. *Reconciler implements it.
type Syncer interface {
	SyncCycle(ctx context.Context, trigger SyncTrigger) (SyncReport, error)
}

// SchedulerConfig holds sync loop configuration.
type SchedulerConfig struct {
	Interval   time.Duration // time between cycles (default: 30s)
	RunOnStart bool          // run one cycle immediately on Start
}

// DefaultSchedulerConfig returns the default loop settings.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:   30 * time.Second,
		RunOnStart: true,
	}
}

// SyncScheduler runs sync cycles on a fixed interval. A tick that lands
// while a cycle is still running is dropped.
type SyncScheduler struct {
	cfg    SchedulerConfig
	syncer Syncer
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncScheduler creates a scheduler. Call Start to begin the loop.
func NewSyncScheduler(cfg SchedulerConfig, syncer Syncer, logger *slog.Logger) *SyncScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSchedulerConfig().Interval
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SyncScheduler{
		cfg:    cfg,
		syncer: syncer,
		logger: logger.With(slog.String("component", "app.SyncScheduler")),
	}
}

// Start begins the sync loop. It returns immediately; calling Start on a
// running scheduler is a no-op.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(loopCtx)

	s.logger.Info("sync scheduler started",
		slog.Duration("interval", s.cfg.Interval),
		slog.Bool("run_on_start", s.cfg.RunOnStart),
	)

	return nil
}

// Stop cancels the loop, including any in-flight cycle, and waits for it to
// exit or for ctx to expire.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	if s.cfg.RunOnStart {
		s.tick(ctx, TriggerStartup)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, TriggerTimer)
		}
	}
}

func (s *SyncScheduler) tick(ctx context.Context, trigger SyncTrigger) {
	if ctx.Err() != nil {
		return
	}

	_, err := s.syncer.SyncCycle(ctx, trigger)

	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		s.logger.Debug("sync tick skipped, cycle in progress", slog.String("trigger", string(trigger)))
	case errors.Is(err, context.Canceled):
		s.logger.Debug("sync cycle canceled", slog.String("trigger", string(trigger)))
	default:
		s.logger.Warn("scheduled sync failed",
			slog.String("trigger", string(trigger)),
			slog.Any("error", err),
		)
	}
}
