package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Storage keys.
const (
	KeyQuotes           = "quotes"
	KeySelectedCategory = "selectedCategory"
	KeyIDCounter        = "idCounter"
)

const healthCheckName = "storage"

// Repository implements ports.QuoteRepository on top of a KeyValueStore.
type Repository struct {
	store  ports.KeyValueStore
	logger *slog.Logger
}

// NewRepository wraps store.
func NewRepository(store ports.KeyValueStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{
		store:  store,
		logger: logger.With(slog.String("component", "storage.Repository")),
	}
}

// Load implements ports.QuoteRepository.
// Only store failures are returned; unparsable values recover to defaults.
func (r *Repository) Load(ctx context.Context) (ports.QuoteState, error) {
	quotes, err := r.loadQuotes(ctx)
	if err != nil {
		return ports.QuoteState{}, err
	}

	selected, err := r.loadSelectedCategory(ctx)
	if err != nil {
		return ports.QuoteState{}, err
	}

	counter, err := r.loadCounter(ctx, quotes)
	if err != nil {
		return ports.QuoteState{}, err
	}

	return ports.QuoteState{
		Quotes:           quotes,
		SelectedCategory: selected,
		IDCounter:        counter,
	}, nil
}

// SaveQuotes implements ports.QuoteRepository.
func (r *Repository) SaveQuotes(ctx context.Context, quotes []domain.Quote, idCounter int) error {
	encoded, err := EncodeQuotes(quotes)
	if err != nil {
		return err
	}

	err = r.store.SetMany(ctx, map[string]string{
		KeyQuotes:    encoded,
		KeyIDCounter: strconv.Itoa(idCounter),
	})
	if err != nil {
		return fmt.Errorf("saving quotes: %w", err)
	}

	return nil
}

// SaveSelectedCategory implements ports.QuoteRepository.
func (r *Repository) SaveSelectedCategory(ctx context.Context, category string) error {
	if err := r.store.Set(ctx, KeySelectedCategory, category); err != nil {
		return fmt.Errorf("saving selected category: %w", err)
	}

	return nil
}

func (r *Repository) loadQuotes(ctx context.Context) ([]domain.Quote, error) {
	raw, err := r.store.Get(ctx, KeyQuotes)
	if domain.IsNotFound(err) {
		return []domain.Quote{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading quotes: %w", err)
	}

	quotes, err := DecodeQuotes(raw)
	if err != nil {
		r.logger.WarnContext(ctx, "stored quotes are corrupt, starting with an empty list",
			slog.String("error", err.Error()),
		)

		return []domain.Quote{}, nil
	}

	return r.sanitize(ctx, quotes), nil
}

// sanitize drops entries that break list invariants: missing ID, duplicate
// ID, or empty content.
func (r *Repository) sanitize(ctx context.Context, quotes []domain.Quote) []domain.Quote {
	seen := make(map[string]struct{}, len(quotes))
	clean := make([]domain.Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.ID == "" || strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.Category) == "" {
			r.logger.WarnContext(ctx, "dropping incomplete stored quote", slog.String("id", q.ID))
			continue
		}

		if _, dup := seen[q.ID]; dup {
			r.logger.WarnContext(ctx, "dropping duplicate stored quote", slog.String("id", q.ID))
			continue
		}

		seen[q.ID] = struct{}{}
		clean = append(clean, q)
	}

	return clean
}

func (r *Repository) loadSelectedCategory(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, KeySelectedCategory)
	if domain.IsNotFound(err) {
		return domain.CategoryAll, nil
	}

	if err != nil {
		return "", fmt.Errorf("loading selected category: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		return domain.CategoryAll, nil
	}

	return raw, nil
}

// loadCounter never returns a value below the highest local ID already in
// use, so IDs are not reused even when the counter was lost.
func (r *Repository) loadCounter(ctx context.Context, quotes []domain.Quote) (int, error) {
	floor := domain.MaxLocalSequence(quotes)

	raw, err := r.store.Get(ctx, KeyIDCounter)
	if domain.IsNotFound(err) {
		return floor, nil
	}

	if err != nil {
		return 0, fmt.Errorf("loading id counter: %w", err)
	}

	counter, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || counter < 0 {
		r.logger.WarnContext(ctx, "stored id counter is corrupt, recomputing",
			slog.String("value", raw),
			slog.Int("recomputed", floor),
		)

		return floor, nil
	}

	return max(counter, floor), nil
}
