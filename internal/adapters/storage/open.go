package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config selects and configures a store.
type Config struct {
	Driver string
	Path   string
	Logger *slog.Logger
}

// Store is a KeyValueStore that also reports its health.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
}

// Open creates the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFile:
		return NewFileStore(cfg.Path, cfg.Logger)
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case DriverMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
