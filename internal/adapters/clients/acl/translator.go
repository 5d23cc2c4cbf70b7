package acl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// maxResponseBody caps how much of a success response is decoded.
const maxResponseBody = 8 << 20

// gateway is the edge of the remote: everything it returns is either a
// decoded external record or a domain error.
type gateway struct {
	client  *clients.Client
	service string
}

// call sends one request and decodes a 2xx JSON body into T. Transport
// failures and error statuses go through MapHTTPError; an undecodable body
// makes the remote unavailable.
func call[T any](g gateway, operation string, send func() (*http.Response, error)) (T, error) {
	var out T

	resp, err := send()
	if err != nil {
		return out, MapHTTPError(nil, err, g.service, operation, "")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return out, MapHTTPError(resp, nil, g.service, operation, "")
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return out, domain.NewUnavailableError(g.service, fmt.Sprintf("%s: decoding response: %v", operation, err))
	}

	return out, nil
}

// Translator turns one external record into a domain value or rejects it.
type Translator[E, D any] func(*E) (D, error)

// Rejection is an external record a Translator refused, by position.
type Rejection struct {
	Index int
	Err   error
}

// TranslateEach translates items in order. A rejected record is reported
// and skipped; it never fails the batch.
func TranslateEach[E, D any](items []E, translate Translator[E, D]) ([]D, []Rejection) {
	out := make([]D, 0, len(items))

	var rejected []Rejection

	for i := range items {
		d, err := translate(&items[i])
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Err: err})
			continue
		}

		out = append(out, d)
	}

	return out, rejected
}
