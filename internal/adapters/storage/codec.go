package storage

import (
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// EncodeQuotes serializes the list stored under the quotes key.
func EncodeQuotes(quotes []domain.Quote) (string, error) {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	raw, err := json.Marshal(quotes)
	if err != nil {
		return "", fmt.Errorf("encoding quotes: %w", err)
	}

	return string(raw), nil
}

// DecodeQuotes parses a value produced by EncodeQuotes.
func DecodeQuotes(value string) ([]domain.Quote, error) {
	var quotes []domain.Quote
	if err := json.Unmarshal([]byte(value), &quotes); err != nil {
		return nil, fmt.Errorf("decoding quotes: %w", err)
	}

	if quotes == nil {
		quotes = []domain.Quote{}
	}

	return quotes, nil
}
