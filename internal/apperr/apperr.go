// Package apperr defines the service's abstract error taxonomy as
// sentinel errors, wrapped with goware/superr at the call sites that
// produce them. Callers match categories with errors.Is against these
// sentinels rather than inspecting concrete error types.
package apperr

import "errors"

var (
	// ErrInvalidInput marks a validation failure (address, hash,
	// slot, signature, tx hash, block tag, or unit). Never retried.
	ErrInvalidInput = errors.New("apperr: invalid input")

	// ErrUpstream marks an explorer or RPC error envelope/`error`
	// object. Not retried (rate limits are Transient, not Upstream).
	ErrUpstream = errors.New("apperr: upstream error")

	// ErrTransient marks HTTP 5xx/429, a body-level rate-limit match,
	// a transport failure, or a JSON decode failure. Retried up to
	// the configured attempt budget.
	ErrTransient = errors.New("apperr: transient failure")

	// ErrNotFound marks an absence that is not an error for list
	// endpoints (empty list) but is for operations that require a
	// non-empty result.
	ErrNotFound = errors.New("apperr: not found")

	// ErrAmbiguousNetwork marks a chain registry resolution that
	// matched more than one candidate.
	ErrAmbiguousNetwork = errors.New("apperr: ambiguous network")

	// ErrDegraded marks a failure caused by a capability gap rather
	// than bad input or a broken upstream: an RPC creation fallback
	// failing because an archive node is required, or a default
	// network that neither the registry nor the static fallback map
	// can resolve. The call still fails, but callers can errors.Is
	// against this to distinguish it from ErrUpstream/ErrInvalidInput.
	ErrDegraded = errors.New("apperr: degraded capability")
)
