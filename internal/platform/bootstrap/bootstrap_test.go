package bootstrap

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/mocks"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(yaml), 0o600))
	}

	cfg, err := LoadConfig(dir, "")
	require.NoError(t, err)

	return cfg
}

func TestLoadConfig(t *testing.T) {
	cfg := loadTestConfig(t, "storage:\n  driver: memory\nsync:\n  pull_limit: 5\n")

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Sync.PullLimit)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("sync:\n  category_mode: sideways\n"), 0o600))

	_, err := LoadConfig(dir, "")
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewLogger(t *testing.T) {
	cfg := loadTestConfig(t, "log:\n  level: debug\n  format: json\n")

	var buf bytes.Buffer
	NewLogger(cfg, &buf).Debug("pulled", slog.String("api_key", "secret"))

	assert.Contains(t, buf.String(), `"service_name":"quotesync"`)
	assert.Contains(t, buf.String(), `"msg":"pulled"`)
}

func TestNew_BuildsFromConfig(t *testing.T) {
	cfg := loadTestConfig(t, "storage:\n  driver: memory\n")

	a, err := New(context.Background(), cfg, Deps{Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	assert.ElementsMatch(t, []string{"storage", "quote-remote"}, a.Health.Names())
	assert.Empty(t, a.Reconciler.Quotes())
	assert.Equal(t, domain.CategoryAll, a.Reconciler.SelectedCategory())
	assert.False(t, a.Telemetry.Enabled())
}

func TestNew_RestoresPersistedState(t *testing.T) {
	cfg := loadTestConfig(t, "")
	store := storage.NewMemoryStore()
	repo := storage.NewRepository(store, discardLogger())

	ctx := context.Background()
	require.NoError(t, repo.SaveQuotes(ctx, []domain.Quote{
		{ID: "loc-1", Text: "Stay hungry.", Category: "Motivation"},
	}, 1))
	require.NoError(t, repo.SaveSelectedCategory(ctx, "Motivation"))

	a, err := New(ctx, cfg, Deps{
		Logger: discardLogger(),
		Store:  store,
		Remote: mocks.NewMockQuoteRemote(t),
	})
	require.NoError(t, err)

	assert.Len(t, a.Reconciler.Quotes(), 1)
	assert.Equal(t, "Motivation", a.Reconciler.SelectedCategory())
	assert.Equal(t, []string{"storage"}, a.Health.Names(), "mock remote has no health check")
}

func TestNew_BadStorageDriver(t *testing.T) {
	cfg := loadTestConfig(t, "")
	cfg.Storage.Driver = "tape"

	_, err := New(context.Background(), cfg, Deps{Logger: discardLogger()})
	assert.ErrorContains(t, err, `unknown storage driver "tape"`)
}

func TestScheduler_RunsCycles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := loadTestConfig(t, "sync:\n  interval: 1s\n  run_on_start: true\n")
	remote := mocks.NewMockQuoteRemote(t)
	remote.EXPECT().Pull(mock.Anything, cfg.Sync.PullLimit).Return(nil, nil)

	a, err := New(context.Background(), cfg, Deps{
		Logger: discardLogger(),
		Store:  storage.NewMemoryStore(),
		Remote: remote,
	})
	require.NoError(t, err)

	sched := a.Scheduler()
	require.NoError(t, sched.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return len(a.Board.Recent(1)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sched.Stop(context.Background()))
	assert.Equal(t, ports.NotificationSuccess, a.Board.Recent(1)[0].Level)
}

func TestWatchStorage_ReloadsExternalChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "quotes.json")
	cfg := loadTestConfig(t, "storage:\n  driver: file\n  path: "+path+"\n  watch: true\n")

	a, err := New(context.Background(), cfg, Deps{
		Logger: discardLogger(),
		Remote: mocks.NewMockQuoteRemote(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.WatchStorage(ctx) }()

	// A second process writing the same file.
	other, err := storage.NewFileStore(path, discardLogger())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_ = storage.NewRepository(other, discardLogger()).SaveQuotes(context.Background(), []domain.Quote{
			{ID: "loc-1", Text: "Written elsewhere.", Category: "Life"},
		}, 1)

		return len(a.Reconciler.Quotes()) == 1
	}, 3*time.Second, 250*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	notices := a.Board.Recent(10)
	require.NotEmpty(t, notices)
	assert.Equal(t, "Quotes reloaded after an external change.", notices[0].Message)
}

func TestWatchStorage_NoopForMemory(t *testing.T) {
	cfg := loadTestConfig(t, "storage:\n  driver: memory\n")

	a, err := New(context.Background(), cfg, Deps{
		Logger: discardLogger(),
		Remote: mocks.NewMockQuoteRemote(t),
	})
	require.NoError(t, err)

	assert.NoError(t, a.WatchStorage(context.Background()))
}
