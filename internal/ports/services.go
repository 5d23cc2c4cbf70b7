// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for anything that blocks
//   - Return domain types, never remote DTOs or storage rows
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteRemote is the remote list resource the local quotes are reconciled with.
//
// Example usage in application layer:
//
//	remote, err := r.remote.Pull(ctx, 20)
//	if err != nil {
//	    return fmt.Errorf("pulling quotes: %w", err)
//	}
type QuoteRemote interface {
	// Pull fetches up to limit remote records translated to quotes.
	// Every returned quote has ID and ServerID set to the same "srv-" key.
	// Returns domain.ErrUnavailable when the remote cannot be reached or
	// its response cannot be decoded.
	Pull(ctx context.Context, limit int) ([]domain.Quote, error)

	// Create publishes a local-only quote and returns the server ID the
	// remote assigned to it.
	Create(ctx context.Context, quote domain.Quote) (string, error)
}

// QuoteState is everything the repository persists for the reconciler.
type QuoteState struct {
	Quotes           []domain.Quote
	SelectedCategory string
	IDCounter        int
}

// QuoteRepository persists the quote list, the selected filter and the
// local ID counter.
type QuoteRepository interface {
	// Load restores the persisted state. Corrupt or missing values recover
	// to an empty list, CategoryAll and a counter consistent with the list.
	Load(ctx context.Context) (QuoteState, error)

	// SaveQuotes persists the full quote list and the ID counter together.
	SaveQuotes(ctx context.Context, quotes []domain.Quote, idCounter int) error

	// SaveSelectedCategory persists the selected filter.
	SaveSelectedCategory(ctx context.Context, category string) error
}

// KeyValueStore is the durable string store the repository is built on.
type KeyValueStore interface {
	// Get returns the stored value. Returns domain.ErrNotFound when the key
	// has never been written.
	Get(ctx context.Context, key string) (string, error)

	// Set writes a single key.
	Set(ctx context.Context, key, value string) error

	// SetMany writes all entries in one durable step.
	SetMany(ctx context.Context, entries map[string]string) error

	// Close releases the underlying resources.
	Close() error
}

// NotificationLevel classifies a notice.
type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a short-lived status notice shown to operators.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	At      time.Time         `json:"at"`
}

// Notifier delivers status notices. Delivery never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
