package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/ports"
)

func TestBoard_RecentNewestFirst(t *testing.T) {
	board := NewBoard(5, nil)
	ctx := context.Background()

	board.Notify(ctx, ports.Notification{Message: "one"})
	board.Notify(ctx, ports.Notification{Level: ports.NotificationSuccess, Message: "two"})

	recent := board.Recent(0)

	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Message)
	assert.Equal(t, ports.NotificationSuccess, recent[0].Level)
	assert.Equal(t, "one", recent[1].Message)
	assert.Equal(t, ports.NotificationInfo, recent[1].Level)
}

func TestBoard_DropsOldestWhenFull(t *testing.T) {
	board := NewBoard(3, nil)
	ctx := context.Background()

	for i := range 5 {
		board.Notify(ctx, ports.Notification{Message: fmt.Sprintf("n%d", i)})
	}

	recent := board.Recent(0)

	require.Len(t, recent, 3)
	assert.Equal(t, "n4", recent[0].Message)
	assert.Equal(t, "n3", recent[1].Message)
	assert.Equal(t, "n2", recent[2].Message)
}

func TestBoard_RecentLimit(t *testing.T) {
	board := NewBoard(10, nil)
	ctx := context.Background()

	for i := range 4 {
		board.Notify(ctx, ports.Notification{Message: fmt.Sprintf("n%d", i)})
	}

	recent := board.Recent(2)

	require.Len(t, recent, 2)
	assert.Equal(t, "n3", recent[0].Message)
}

func TestBoard_StampsTime(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	board := NewBoard(2, nil)
	board.now = func() time.Time { return fixed }

	board.Notify(context.Background(), ports.Notification{Message: "x"})

	assert.Equal(t, fixed, board.Recent(1)[0].At)
}

func TestBoard_EmptyAndDefaultCapacity(t *testing.T) {
	board := NewBoard(0, nil)

	assert.Empty(t, board.Recent(5))
	assert.Len(t, board.entries, DefaultCapacity)
}
