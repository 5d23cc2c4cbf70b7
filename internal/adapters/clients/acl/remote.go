package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// QuoteRemoteConfig configures the remote quote adapter.
type QuoteRemoteConfig struct {
	// Client is the HTTP client whose BaseURL points at the remote host.
	Client *clients.Client

	// Resource is the list resource path, e.g. "/posts".
	Resource string

	// UserID is sent as userId on every created record.
	UserID int

	// CategoryMode is config.CategoryModeBody or config.CategoryModeFixed.
	CategoryMode string

	// FixedCategory is assigned to every pulled quote in fixed mode.
	FixedCategory string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteRemote implements ports.QuoteRemote against a JSON list resource.
type QuoteRemote struct {
	gw gateway

	resource      string
	userID        int
	fixedCategory string
	logger        *slog.Logger
}

// NewQuoteRemote creates the remote quote adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteRemote(cfg QuoteRemoteConfig) *QuoteRemote {
	if cfg.Client == nil {
		panic("QuoteRemote: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resource := cfg.Resource
	if resource == "" {
		resource = "/posts"
	}

	r := &QuoteRemote{
		gw:       gateway{client: cfg.Client, service: cfg.Client.ServiceName()},
		resource: resource,
		userID:   cfg.UserID,
		logger:   logger,
	}

	if cfg.CategoryMode == config.CategoryModeFixed {
		r.fixedCategory = cfg.FixedCategory
	}

	return r
}

// remoteID is a record id that the remote may send as a number or a string.
type remoteID string

// UnmarshalJSON accepts 7, "7" and null.
func (id *remoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = remoteID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("remote id must be a number or string: %w", err)
	}

	*id = remoteID(n.String())

	return nil
}

// remotePost is the record shape served by the remote. Never exposed
// outside this package.
type remotePost struct {
	ID     remoteID `json:"id"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	UserID int      `json:"userId,omitempty"`
}

// createPostRequest is the body sent when creating a record.
type createPostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Pull fetches up to limit records and translates them to quotes whose ID
// and ServerID are both the namespaced remote id.
// Implements ports.QuoteRemote.
func (r *QuoteRemote) Pull(ctx context.Context, limit int) ([]domain.Quote, error) {
	path := r.resource
	if limit > 0 {
		path = fmt.Sprintf("%s?_limit=%d", r.resource, limit)
	}

	logger := logging.FromContextOr(ctx, r.logger)
	logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	posts, err := call[[]remotePost](r.gw, "pull quotes", func() (*http.Response, error) {
		return r.gw.client.Get(ctx, path)
	})
	if err != nil {
		return nil, err
	}

	quotes, rejected := TranslateEach(posts, r.toDomain)
	for _, rej := range rejected {
		logger.Debug("skipping remote record",
			slog.Int("index", rej.Index),
			slog.Any("reason", rej.Err),
		)
	}

	logger.Log(ctx, logging.LevelTrace, "translated remote records",
		slog.Int("received", len(posts)),
		slog.Int("accepted", len(quotes)),
	)

	return quotes, nil
}

// Create posts a local quote and returns the server key assigned to it.
// Implements ports.QuoteRemote.
func (r *QuoteRemote) Create(ctx context.Context, q domain.Quote) (string, error) {
	req := createPostRequest{
		Title:  q.Text,
		Body:   q.Category,
		UserID: r.userID,
	}

	created, err := call[remotePost](r.gw, "create quote", func() (*http.Response, error) {
		return r.gw.client.PostJSON(ctx, r.resource, req)
	})
	if err != nil {
		return "", err
	}

	if created.ID == "" {
		return "", domain.NewUnavailableError(r.gw.service, "created record has no id")
	}

	serverID := domain.ServerKey(string(created.ID))

	logging.FromContextOr(ctx, r.logger).Log(ctx, logging.LevelTrace, "created remote record",
		slog.String("quote_id", q.ID),
		slog.String("server_id", serverID),
	)

	return serverID, nil
}

// toDomain converts a remote record to a quote.
func (r *QuoteRemote) toDomain(p *remotePost) (domain.Quote, error) {
	if p.ID == "" {
		return domain.Quote{}, domain.NewValidationError("id", "is required")
	}

	text := strings.TrimSpace(p.Title)
	if text == "" {
		return domain.Quote{}, domain.NewValidationError("title", "is required")
	}

	category := r.fixedCategory
	if category == "" {
		category = strings.TrimSpace(p.Body)
	}

	if category == "" {
		return domain.Quote{}, domain.NewValidationError("body", "is required")
	}

	if err := domain.ValidateCategory(category); err != nil {
		return domain.Quote{}, err
	}

	key := domain.ServerKey(string(p.ID))

	return domain.Quote{
		ID:       key,
		ServerID: key,
		Text:     text,
		Category: category,
	}, nil
}

// Name returns the health check name for the remote.
// Implements ports.HealthChecker.
func (r *QuoteRemote) Name() string {
	return r.gw.service
}

// Check reports the remote unavailable while the circuit is open, and
// otherwise fetches a single record.
// Implements ports.HealthChecker.
func (r *QuoteRemote) Check(ctx context.Context) error {
	if r.gw.client.CircuitState() == clients.StateOpen {
		reason := "circuit breaker open"
		if wait := r.gw.client.CircuitRetryIn(); wait > 0 {
			reason += ", next probe in " + wait.Round(time.Second).String()
		}

		return domain.NewUnavailableError(r.gw.service, reason)
	}

	_, err := call[json.RawMessage](r.gw, "health check", func() (*http.Response, error) {
		return r.gw.client.Get(ctx, r.resource+"?_limit=1")
	})

	return err
}
