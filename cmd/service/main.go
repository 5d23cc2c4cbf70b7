// Package main runs the quotesync HTTP service and its background sync loop.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/platform/bootstrap"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quotesync: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig(config.DefaultConfigDir, cmp.Or(os.Getenv("APP_ENVIRONMENT"), "local"))
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cfg, os.Stdout)
	logging.SetDefault(logger)

	logger.Info("starting quotesync",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("sync_enabled", cfg.Sync.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap.New(ctx, cfg, bootstrap.Deps{Logger: logger})
	if err != nil {
		return err
	}

	defer func() {
		graceCtx, cancel := grace(cfg)
		defer cancel()

		if err := a.Close(graceCtx); err != nil {
			logger.Error("releasing resources failed", slog.Any("error", err))
		}
	}()

	if err := serve(ctx, cfg, logger, a); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}

// serve runs the API, the storage watcher and, when enabled, the sync
// scheduler until ctx ends or one of them fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *bootstrap.App) error {
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(
		logger,
		cfg,
		handlers.NewHealthHandler(a.Health, handlers.NewBuildInfo(Version, Commit, BuildTime)).WithStats(a.Reconciler),
		handlers.NewQuoteHandler(a.Reconciler),
		handlers.NewSyncHandler(a.Reconciler, a.Board),
	))

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case err := <-serverErr:
			return err
		case <-gctx.Done():
			return nil
		}
	})

	g.Go(func() error { return a.WatchStorage(gctx) })

	if cfg.Sync.Enabled {
		scheduler := a.Scheduler()
		if err := scheduler.Start(gctx); err != nil {
			return fmt.Errorf("starting sync scheduler: %w", err)
		}

		g.Go(func() error {
			<-gctx.Done()

			graceCtx, cancel := grace(cfg)
			defer cancel()

			return scheduler.Stop(graceCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("draining", slog.Duration("grace", cfg.Server.ShutdownTimeout))

		graceCtx, cancel := grace(cfg)
		defer cancel()

		return server.Shutdown(graceCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// grace bounds a shutdown step. It is detached from the signal context,
// which is already done by the time shutdown runs.
func grace(cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
}
