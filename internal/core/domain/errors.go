package domain

import "errors"

// Sentinel errors shared across the gateway. The API error handler and the
// form controller classify failures exclusively through errors.Is on these
// values, so infrastructure code must wrap rather than replace them.
var (
	// ErrValidation marks client-side validation failures. No remote call
	// is made when a submission fails validation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a duplicate unique key rejected upstream (HTTP 409).
	ErrConflict = errors.New("record already exists")

	// ErrNotFound marks a missing target resource (HTTP 404).
	ErrNotFound = errors.New("record not found")

	// ErrAuth marks invalid credentials or an expired session (HTTP 401/403).
	ErrAuth = errors.New("authentication failed")

	// ErrNetwork marks a transport-level failure reaching the upstream API.
	ErrNetwork = errors.New("upstream unreachable")

	// ErrTimeout marks an upstream call that exceeded its deadline.
	ErrTimeout = errors.New("upstream timed out")

	// ErrRemote marks any other non-2xx upstream response.
	ErrRemote = errors.New("upstream request failed")

	// ErrSubmitInFlight is returned when a form submission is attempted
	// while a previous one has not finished. At most one create/update
	// call is in flight per form instance.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrFormExpired marks an operation on a form instance that has been
	// closed or reaped by the registry janitor.
	ErrFormExpired = errors.New("form expired")
)
