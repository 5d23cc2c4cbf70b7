// Package notify keeps a bounded history of operator notices.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// DefaultCapacity is used when NewBoard is given a non-positive capacity.
const DefaultCapacity = 50

// Board is a ring buffer of recent notifications. Every notice is also logged.
type Board struct {
	mu       sync.RWMutex
	entries  []ports.Notification
	next     int
	full     bool
	now      func() time.Time
	fallback *slog.Logger
}

// NewBoard creates a board that remembers the last capacity notices.
func NewBoard(capacity int, logger *slog.Logger) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		entries:  make([]ports.Notification, capacity),
		now:      time.Now,
		fallback: logger,
	}
}

// Notify implements ports.Notifier.
func (b *Board) Notify(ctx context.Context, n ports.Notification) {
	if n.At.IsZero() {
		n.At = b.now()
	}

	if n.Level == "" {
		n.Level = ports.NotificationInfo
	}

	b.mu.Lock()
	b.entries[b.next] = n
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
	b.mu.Unlock()

	logger := logging.FromContextOr(ctx, b.fallback)
	level := slog.LevelInfo
	if n.Level == ports.NotificationError {
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, "notification",
		slog.String("level", string(n.Level)),
		slog.String("message", n.Message),
	)
}

// Recent returns up to limit notices, newest first. A non-positive limit
// returns everything retained.
func (b *Board) Recent(limit int) []ports.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := b.next
	if b.full {
		size = len(b.entries)
	}

	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]ports.Notification, 0, limit)
	for i := range limit {
		idx := (b.next - 1 - i + len(b.entries)) % len(b.entries)
		out = append(out, b.entries[idx])
	}

	return out
}
