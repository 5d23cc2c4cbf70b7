// Package bootstrap assembles the quote list, its storage and the remote from
// loaded configuration. Both the service and quotectl start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// LoadConfig loads and validates the profile from dir.
func LoadConfig(dir, profile string) (*config.Config, error) {
	cfg, err := config.LoadDir(dir, profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the application logger writing to w.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
}

// Deps overrides pieces of the graph. Zero fields are built from config.
type Deps struct {
	Logger *slog.Logger
	Store  storage.Store
	Remote ports.QuoteRemote
}

// App is the assembled quote list with everything it talks to.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Telemetry  *telemetry.Provider
	Store      storage.Store
	Remote     ports.QuoteRemote
	Board      *notify.Board
	Health     *ports.DefaultHealthRegistry
	Reconciler *app.Reconciler
}

// New wires telemetry, storage, the remote, the notice board and the
// reconciler, then restores persisted state. The store and the remote are
// registered as readiness checks.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tel, err := telemetry.New(ctx, telemetry.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		Store:     deps.Store,
		Remote:    deps.Remote,
		Board:     notify.NewBoard(cfg.Notifications.Capacity, logger),
		Health:    ports.NewHealthRegistry(),
	}

	if err := a.build(ctx); err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}

	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	if a.Store == nil {
		store, err := storage.Open(ctx, storage.Config{
			Driver: cfg.Storage.Driver,
			Path:   cfg.Storage.Path,
			Logger: a.Logger,
		})
		if err != nil {
			return fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
		}

		a.Store = store
	}

	if err := a.Health.Register(a.Store); err != nil {
		return fmt.Errorf("registering storage check: %w", err)
	}

	if a.Remote == nil {
		remote, err := newRemote(cfg, a.Logger)
		if err != nil {
			return err
		}

		a.Remote = remote
	}

	if checker, ok := a.Remote.(ports.HealthChecker); ok {
		if err := a.Health.Register(ports.Optional(checker)); err != nil {
			return fmt.Errorf("registering remote check: %w", err)
		}
	}

	reconciler, err := app.NewReconciler(app.ReconcilerConfig{
		Repository:      storage.NewRepository(a.Store, a.Logger),
		Remote:          a.Remote,
		Notifier:        a.Board,
		PullLimit:       cfg.Sync.PullLimit,
		PushConcurrency: cfg.Sync.PushConcurrency,
		Logger:          a.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating reconciler: %w", err)
	}

	if err := reconciler.Load(ctx); err != nil {
		return err
	}

	a.Reconciler = reconciler

	return nil
}

func newRemote(cfg *config.Config, logger *slog.Logger) (*acl.QuoteRemote, error) {
	svc := cfg.Services.Quotes

	client, err := clients.New(&clients.Config{
		BaseURL:     svc.BaseURL,
		ServiceName: svc.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    clients.BearerAuth(svc.APIKey),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", svc.Name, err)
	}

	return acl.NewQuoteRemote(acl.QuoteRemoteConfig{
		Client:        client,
		Resource:      svc.Resource,
		UserID:        svc.UserID,
		CategoryMode:  cfg.Sync.CategoryMode,
		FixedCategory: cfg.Sync.FixedCategory,
		Logger:        logger,
	}), nil
}

// Scheduler returns a sync loop over the reconciler using the sync section.
func (a *App) Scheduler() *app.SyncScheduler {
	return app.NewSyncScheduler(app.SchedulerConfig{
		Interval:   a.Config.Sync.Interval,
		RunOnStart: a.Config.Sync.RunOnStart,
	}, a.Reconciler, a.Logger)
}

// WatchStorage reloads the list whenever another process rewrites the
// storage file. It blocks until ctx is done and returns immediately when the
// store is not file backed or watching is disabled.
func (a *App) WatchStorage(ctx context.Context) error {
	fileStore, ok := a.Store.(*storage.FileStore)
	if !ok || !a.Config.Storage.Watch {
		return nil
	}

	return fileStore.Watch(ctx, func(ctx context.Context) {
		reloaded, err := a.Reconciler.Reload(ctx)
		if err != nil {
			a.Logger.Warn("reloading after external change failed", slog.Any("error", err))
			return
		}

		if reloaded {
			a.Board.Notify(ctx, ports.Notification{
				Level:   ports.NotificationInfo,
				Message: "Quotes reloaded after an external change.",
			})
		}
	})
}

// Close releases storage and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
