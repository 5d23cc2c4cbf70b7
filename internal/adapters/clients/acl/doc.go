// Package acl is the anti-corruption layer between quotesync and the remote
// list resource it synchronizes with.
//
// The remote speaks in posts ({id, title, body, userId}); the domain speaks in
// quotes. Everything that knows about the remote's field names, id format or
// error bodies lives here, so the reconciler only ever sees [domain.Quote]
// values and domain errors.
//
// # Mapping
//
//   - title ↔ Quote.Text
//   - body ↔ Quote.Category, or a fixed category when configured
//   - id → Quote.ID and Quote.ServerID as "srv-<id>"
//
// Remote ids may arrive as JSON numbers or strings. Records with an empty
// id, title or body are skipped rather than failing the whole pull.
//
// # Error Handling
//
// [MapHTTPError] converts responses and client failures to domain errors:
//   - 404 Not Found → [domain.ErrNotFound]
//   - 409 Conflict → [domain.ErrConflict]
//   - 400/422 → [domain.ErrValidation]
//   - 401/403 → [domain.ErrForbidden]
//   - 429, 5xx, transport errors, open circuit → [domain.ErrUnavailable]
package acl
