// Package app contains the application layer that orchestrates quote use
// cases over the domain and the ports.
//
// The Reconciler is the single owner of the in-memory quote list. HTTP
// handlers, the CLI, the sync scheduler and the storage watcher all go
// through it; nothing else mutates quotes.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

const instrumentationName = "github.com/jsamuelsen/quotesync/internal/app"

// Defaults applied when ReconcilerConfig leaves a limit unset.
const (
	DefaultPullLimit       = 20
	DefaultPushConcurrency = 4
)

// ErrSyncInProgress is returned when a cycle, push, merge or reload is
// requested while another one holds the sync guard.
var ErrSyncInProgress = domain.NewConflictError("sync", "a sync cycle is already in progress")

// ReconcilerConfig contains the dependencies of the Reconciler.
type ReconcilerConfig struct {
	Repository ports.QuoteRepository
	Remote     ports.QuoteRemote

	// Notifier receives status notices. Optional.
	Notifier ports.Notifier

	// PullLimit caps how many remote records one pull fetches.
	PullLimit int

	// PushConcurrency bounds concurrent creates during a push.
	PushConcurrency int

	Logger *slog.Logger

	// Rand picks an index in [0, n). Defaults to math/rand/v2.IntN.
	Rand func(n int) int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Reconciler holds the quote list, the selected category and the local ID
// counter, and reconciles the list with the remote.
type Reconciler struct {
	repo     ports.QuoteRepository
	remote   ports.QuoteRemote
	notifier ports.Notifier
	exec     *Executor
	logger   *slog.Logger
	metrics  *syncMetrics
	tracer   trace.Tracer
	rand     func(n int) int
	now      func() time.Time

	pullLimit       int
	pushConcurrency int

	mu        sync.RWMutex
	quotes    []domain.Quote
	selected  string
	idCounter int

	// busy guards sync cycles, pushes, merges and reloads against each other.
	busy atomic.Bool

	// reloadPending records a storage change seen while busy was held.
	reloadPending atomic.Bool
}

// NewReconciler creates a reconciler with an empty list. Call Load to restore
// persisted state.
// Panics if Repository or Remote is nil.
func NewReconciler(cfg ReconcilerConfig) (*Reconciler, error) {
	if cfg.Repository == nil {
		panic("Reconciler: Repository is required")
	}

	if cfg.Remote == nil {
		panic("Reconciler: Remote is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "app.Reconciler"))

	metrics, err := newSyncMetrics(otel.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	r := &Reconciler{
		repo:            cfg.Repository,
		remote:          cfg.Remote,
		notifier:        cfg.Notifier,
		exec:            NewExecutor(logger),
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer(instrumentationName),
		rand:            cfg.Rand,
		now:             cfg.Now,
		pullLimit:       cfg.PullLimit,
		pushConcurrency: cfg.PushConcurrency,
		selected:        domain.CategoryAll,
	}

	if r.rand == nil {
		r.rand = rand.IntN
	}

	if r.now == nil {
		r.now = time.Now
	}

	if r.pullLimit <= 0 {
		r.pullLimit = DefaultPullLimit
	}

	if r.pushConcurrency <= 0 {
		r.pushConcurrency = DefaultPushConcurrency
	}

	return r, nil
}

// Load restores the persisted list, filter and ID counter.
func (r *Reconciler) Load(ctx context.Context) error {
	state, err := r.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	r.mu.Lock()
	r.apply(state)
	r.mu.Unlock()

	r.logFor(ctx).InfoContext(ctx, "quotes loaded",
		slog.Int("count", len(state.Quotes)),
		slog.String("selected_category", state.SelectedCategory),
	)

	return nil
}

// Reload re-reads storage after it was changed by another process.
//
// While a sync holds the guard it returns false and the reload is deferred:
// the sync folds the stored quotes into its own write, and any change seen
// after that write is reloaded when the guard is released.
func (r *Reconciler) Reload(ctx context.Context) (bool, error) {
	if !r.busy.CompareAndSwap(false, true) {
		r.reloadPending.Store(true)
		r.logFor(ctx).DebugContext(ctx, "reload deferred until the sync finishes")

		return false, nil
	}
	defer r.release(ctx)

	r.reloadPending.Store(false)

	// The list lock is held across the read so an Add cannot land between
	// the read and the apply and be dropped.
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reloading quotes: %w", err)
	}

	r.apply(state)

	r.logFor(ctx).InfoContext(ctx, "quotes reloaded from storage",
		slog.Int("count", len(r.quotes)),
	)

	return true, nil
}

// apply installs stored state. Quotes only memory knows about, such as one
// whose save failed, are kept and the ID counter never goes backwards.
// r.mu must be held.
func (r *Reconciler) apply(state ports.QuoteState) {
	selected := state.SelectedCategory
	if selected == "" {
		selected = domain.CategoryAll
	}

	r.quotes, r.idCounter = unionQuotes(state.Quotes, r.quotes, max(state.IDCounter, r.idCounter))
	r.selected = selected
}

// unionQuotes returns primary followed by every quote of extra that primary
// lacks. An unsynced extra quote whose local ID is taken by different
// content gets a fresh local ID, so neither quote is lost and no ID is
// shared. The returned counter covers every local ID in the result.
func unionQuotes(primary, extra []domain.Quote, counter int) ([]domain.Quote, int) {
	out := slices.Clone(primary)
	counter = max(counter, domain.MaxLocalSequence(primary), domain.MaxLocalSequence(extra))

	index := make(map[string]int, len(out))
	for i, q := range out {
		index[q.ID] = i
	}

	for _, q := range extra {
		i, taken := index[q.ID]
		switch {
		case !taken:
		case out[i].SameContent(q):
			if !out[i].Synced() && q.Synced() {
				out[i].ServerID = q.ServerID
			}

			continue
		case q.Synced():
			continue
		default:
			counter++
			q.ID = domain.LocalID(counter)
		}

		index[q.ID] = len(out)
		out = append(out, q)
	}

	return out, counter
}

// release drops the sync guard, then runs a reload that was deferred while
// it was held. The reload is detached from ctx's cancellation since the
// change it picks up outlives the request that held the guard.
func (r *Reconciler) release(ctx context.Context) {
	r.busy.Store(false)

	if !r.reloadPending.Load() {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if _, err := r.Reload(ctx); err != nil {
		r.logFor(ctx).WarnContext(ctx, "deferred reload failed", slog.Any("error", err))
	}
}

// Add validates and appends a local-only quote, then persists the list.
// On any error the in-memory state is left unchanged.
func (r *Reconciler) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	r.mu.Lock()

	next := r.idCounter + 1

	q, err := domain.NewQuote(domain.LocalID(next), text, category)
	if err != nil {
		r.mu.Unlock()
		return domain.Quote{}, err
	}

	updated := append(slices.Clone(r.quotes), q)

	if err := r.repo.SaveQuotes(ctx, updated, next); err != nil {
		r.mu.Unlock()
		return domain.Quote{}, fmt.Errorf("saving quotes: %w", err)
	}

	r.quotes = updated
	r.idCounter = next
	r.mu.Unlock()

	r.logFor(ctx).InfoContext(ctx, "quote added",
		slog.String("quote_id", q.ID),
		slog.String("category", q.Category),
	)
	r.notify(ctx, ports.NotificationSuccess, fmt.Sprintf("Quote added to %s.", q.Category))

	return q, nil
}

// Quotes returns a copy of the full list in insertion order.
func (r *Reconciler) Quotes() []domain.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.quotes)
}

// Categories returns the distinct categories in first-seen order.
func (r *Reconciler) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.Categories(r.quotes)
}

// Filter returns the quotes in category; CategoryAll or "" returns all.
func (r *Reconciler) Filter(category string) []domain.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.FilterByCategory(r.quotes, category)
}

// Random picks one quote from the category view.
// Returns a NotFoundError when the view is empty.
func (r *Reconciler) Random(category string) (domain.Quote, error) {
	view := r.Filter(category)
	if len(view) == 0 {
		if domain.IsAllCategories(category) {
			return domain.Quote{}, domain.NewNotFoundError("quote", "")
		}

		return domain.Quote{}, domain.NewNotFoundError("quote in category "+category, "")
	}

	return view[r.rand(len(view))], nil
}

// SelectedCategory returns the persisted filter.
func (r *Reconciler) SelectedCategory() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.selected
}

// SelectCategory persists a new filter. It must be CategoryAll or a category
// present in the list.
func (r *Reconciler) SelectCategory(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)

	r.mu.Lock()
	defer r.mu.Unlock()

	if domain.IsAllCategories(category) {
		category = domain.CategoryAll
	} else if !domain.HasCategory(r.quotes, category) {
		return domain.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
	}

	if err := r.repo.SaveSelectedCategory(ctx, category); err != nil {
		return fmt.Errorf("saving selected category: %w", err)
	}

	r.selected = category

	return nil
}

// snapshot copies the list under the read lock.
func (r *Reconciler) snapshot() []domain.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.quotes)
}

// commit replaces the first len(base) quotes with updated, keeps anything
// appended since base was taken, and persists the result.
// Memory is updated even when persisting fails.
func (r *Reconciler) commit(ctx context.Context, baseLen int, updated []domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []domain.Quote
	if len(r.quotes) > baseLen {
		added = r.quotes[baseLen:]
	}

	next := make([]domain.Quote, 0, len(updated)+len(added))
	next = append(next, updated...)
	next = append(next, added...)

	// Another process wrote storage while the guard was held. Its quotes are
	// folded in so this save does not overwrite them.
	if r.reloadPending.Swap(false) {
		state, err := r.repo.Load(ctx)
		if err != nil {
			r.reloadPending.Store(true)
			r.logFor(ctx).WarnContext(ctx, "reading external changes failed", slog.Any("error", err))
		} else {
			next, r.idCounter = unionQuotes(next, state.Quotes, max(r.idCounter, state.IDCounter))
		}
	}

	r.quotes = next

	if err := r.repo.SaveQuotes(ctx, next, r.idCounter); err != nil {
		return fmt.Errorf("saving quotes: %w", err)
	}

	return nil
}

func (r *Reconciler) notify(ctx context.Context, level ports.NotificationLevel, message string) {
	if r.notifier == nil {
		return
	}

	r.notifier.Notify(ctx, ports.Notification{
		Level:   level,
		Message: message,
		At:      r.now(),
	})
}

func (r *Reconciler) logFor(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, r.logger)
}

func (r *Reconciler) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
