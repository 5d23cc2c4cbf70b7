package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingHandler accepts every level and fails every write.
type failingHandler struct{ err error }

func (f failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (f failingHandler) Handle(context.Context, slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	return f.err
}

func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f failingHandler) WithGroup(string) slog.Handler      { return f }

func TestTeeHandler_Enabled(t *testing.T) {
	tee := teeHandler{
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}

	ctx := context.Background()
	assert.False(t, tee.Enabled(ctx, slog.LevelDebug))
	assert.True(t, tee.Enabled(ctx, slog.LevelInfo))
	assert.False(t, teeHandler{}.Enabled(ctx, slog.LevelError))
}

func TestTeeHandler_HandleRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer

	logger := slog.New(teeHandler{
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelInfo}),
	})

	logger.Info("cycle finished")
	logger.Warn("push failed")

	assert.NotContains(t, console.String(), "cycle finished")
	assert.Contains(t, console.String(), "push failed")
	assert.Contains(t, file.String(), "cycle finished")
	assert.Contains(t, file.String(), "push failed")
}

func TestTeeHandler_HandleJoinsErrors(t *testing.T) {
	diskFull := errors.New("disk full")
	closed := errors.New("closed")

	var buf bytes.Buffer
	tee := teeHandler{
		failingHandler{err: diskFull},
		slog.NewJSONHandler(&buf, nil),
		failingHandler{err: closed},
	}

	err := tee.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0))

	require.Error(t, err)
	require.ErrorIs(t, err, diskFull)
	require.ErrorIs(t, err, closed)
	assert.Contains(t, buf.String(), "still written")
}

func TestTeeHandler_WithAttrsAndGroup(t *testing.T) {
	var a, b bytes.Buffer

	logger := slog.New(teeHandler{
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}).With(slog.String("component", "reconciler")).WithGroup("report")

	logger.Info("done", slog.Int("pushed", 2))

	for _, out := range []string{a.String(), b.String()} {
		assert.Contains(t, out, `"component":"reconciler"`)
		assert.Contains(t, out, `"report":{"pushed":2}`)
	}
}
