package dto

import (
	"time"

	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// QuoteResponse is the wire form of a quote.
type QuoteResponse struct {
	ID       string `json:"id"`
	ServerID string `json:"serverId,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Synced   bool   `json:"synced"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:       q.ID,
		ServerID: q.ServerID,
		Text:     q.Text,
		Category: q.Category,
		Synced:   q.Synced(),
	}
}

// QuoteListResponse wraps a filtered list of quotes.
type QuoteListResponse struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Quotes   []QuoteResponse `json:"quotes"`
}

// NewQuoteListResponse converts quotes filtered by category.
func NewQuoteListResponse(category string, quotes []domain.Quote) QuoteListResponse {
	items := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		items[i] = NewQuoteResponse(q)
	}

	return QuoteListResponse{
		Category: category,
		Count:    len(items),
		Quotes:   items,
	}
}

// QuoteListQuery is the query string of the list and random endpoints.
// An absent category falls back to the selected one.
type QuoteListQuery struct {
	Category *string `json:"category" form:"category" validate:"omitempty,max=100"`
}

// CreateQuoteRequest is the body of POST /quotes. The category may not be
// the reserved "all" filter value.
type CreateQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notempty,max=1000"`
	Category string `json:"category" validate:"required,category,max=100"`
}

// CategoriesResponse lists the distinct categories and the current filter.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// SelectCategoryRequest is the body of PUT /categories/selected.
// An empty category selects all quotes.
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"max=100"`
}

// SyncReportResponse is the wire form of a completed sync cycle.
type SyncReportResponse struct {
	Trigger    string    `json:"trigger"`
	Pulled     int       `json:"pulled"`
	Added      int       `json:"added"`
	Updated    int       `json:"updated"`
	Conflicts  int       `json:"conflicts"`
	Pushed     int       `json:"pushed"`
	PushFailed int       `json:"pushFailed"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Summary    string    `json:"summary"`
}

// NewSyncReportResponse converts a sync report.
func NewSyncReportResponse(r app.SyncReport) SyncReportResponse {
	return SyncReportResponse{
		Trigger:    string(r.Trigger),
		Pulled:     r.Pulled,
		Added:      r.Added,
		Updated:    r.Updated,
		Conflicts:  r.Conflicts,
		Pushed:     r.Pushed,
		PushFailed: r.PushFailed,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Summary:    r.Summary(),
	}
}

// NotificationQuery is the query string of GET /notifications.
type NotificationQuery struct {
	Limit int `json:"limit" form:"limit" validate:"omitempty,min=1,max=100"`
}

// NotificationListResponse holds recent notices, newest first.
type NotificationListResponse struct {
	Notifications []ports.Notification `json:"notifications"`
}
