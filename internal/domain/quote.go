// Package domain contains core business entities and rules.
package domain

import (
	"slices"
	"strconv"
	"strings"
)

// CategoryAll is the filter value that selects every quote.
const CategoryAll = "all"

const (
	localIDPrefix  = "loc-"
	serverIDPrefix = "srv-"
)

// LocalID formats the n-th locally assigned quote ID.
func LocalID(n int) string {
	return localIDPrefix + strconv.Itoa(n)
}

// LocalSequence extracts n from an ID produced by LocalID.
func LocalSequence(id string) (int, bool) {
	raw, ok := strings.CutPrefix(id, localIDPrefix)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

// ServerKey namespaces a remote record ID so it can never collide with a LocalID.
func ServerKey(remoteID string) string {
	return serverIDPrefix + remoteID
}

// MaxLocalSequence returns the highest LocalID sequence present in quotes.
func MaxLocalSequence(quotes []Quote) int {
	maxSeq := 0
	for _, q := range quotes {
		if n, ok := LocalSequence(q.ID); ok && n > maxSeq {
			maxSeq = n
		}
	}

	return maxSeq
}

// Quote is a piece of text filed under a category.
// This is a domain entity - it has no knowledge of storage or the remote API.
type Quote struct {
	// ID is the locally assigned identifier. It is never reused.
	ID string `json:"id"`

	// ServerID identifies the matching remote record.
	// Empty means the quote exists only locally and has not been synced.
	ServerID string `json:"serverId,omitempty"`

	// Text is the quotation itself.
	Text string `json:"text"`

	// Category groups quotes for filtering.
	Category string `json:"category"`
}

// NewQuote builds a local-only quote after trimming and validating its content.
func NewQuote(id, text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)

	if text == "" {
		return Quote{}, NewValidationError("text", "must not be empty")
	}

	if err := checkCategory(category); err != nil {
		return Quote{}, err
	}

	return Quote{ID: id, Text: text, Category: category}, nil
}

// Synced reports whether a remote record is known to exist for the quote.
func (q Quote) Synced() bool {
	return q.ServerID != ""
}

// SameContent reports whether two quotes carry identical text and category.
func (q Quote) SameContent(other Quote) bool {
	return q.Text == other.Text && q.Category == other.Category
}

// IsAllCategories reports whether the filter value selects every quote.
// An empty filter is treated like CategoryAll, which matches in any case.
func IsAllCategories(category string) bool {
	return category == "" || strings.EqualFold(category, CategoryAll)
}

// ValidateCategory checks that category can file a quote: it must not be
// blank and must not be the reserved filter value.
func ValidateCategory(category string) error {
	return checkCategory(strings.TrimSpace(category))
}

func checkCategory(category string) error {
	switch {
	case category == "":
		return NewValidationError("category", "must not be empty")
	case strings.EqualFold(category, CategoryAll):
		return NewValidationError("category", `must not be the reserved category "`+CategoryAll+`"`)
	}

	return nil
}

// FilterByCategory returns the quotes filed under category, in list order.
// The input slice is never modified.
func FilterByCategory(quotes []Quote, category string) []Quote {
	if IsAllCategories(category) {
		return slices.Clone(quotes)
	}

	filtered := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Category == category {
			filtered = append(filtered, q)
		}
	}

	return filtered
}

// Categories returns the distinct categories in first-seen order.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	categories := make([]string, 0)

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		categories = append(categories, q.Category)
	}

	return categories
}

// HasCategory reports whether any quote is filed under category.
func HasCategory(quotes []Quote, category string) bool {
	return slices.ContainsFunc(quotes, func(q Quote) bool {
		return q.Category == category
	})
}
