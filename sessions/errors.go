package sessions

import "errors"

// Sentinel errors shared by the session subsystem and the upstream client.
// Callers test with errors.Is; the orchestrator's retry policy keys off
// these kinds rather than error strings.
var (
	// ErrInvalidArgument indicates malformed input to the store (empty
	// customer id or token). Never retried: it is a caller bug.
	ErrInvalidArgument = errors.New("sessions: invalid argument")

	// ErrNotFound indicates the upstream knows no such customer.
	ErrNotFound = errors.New("sessions: customer not found")

	// ErrUnauthorized indicates a bad or expired credential, including an
	// upstream 401 on a customer-scoped call.
	ErrUnauthorized = errors.New("sessions: unauthorized")

	// ErrAmbiguousCustomer indicates an email lookup matched more than one
	// customer. Surfaced rather than guessing at the first candidate.
	ErrAmbiguousCustomer = errors.New("sessions: email matches multiple customers")

	// ErrUnsafeDefaultSession indicates a request named no identity while
	// customer-scoped sessions exist, so serving the default token could
	// leak an unrelated customer's context. Never retried: it is a caller
	// or configuration bug.
	ErrUnsafeDefaultSession = errors.New("sessions: ambiguous identity: refusing default session while customer sessions exist")

	// ErrNoDefaultSession indicates a request named no identity and no
	// default token is configured.
	ErrNoDefaultSession = errors.New("sessions: no identity supplied and no default session token configured")

	// ErrUpstreamUnavailable indicates a network failure or timeout talking
	// to the upstream API. Surfaced immediately; outer layers own generic
	// availability retries.
	ErrUpstreamUnavailable = errors.New("sessions: upstream unavailable")

	// ErrUpstreamRedirect indicates the upstream answered with a 30x.
	// Historically that signals a misconfigured credential or URL rather
	// than a real redirect, so it is never followed and never retried.
	// Errors carrying this sentinel also match ErrUnauthorized.
	ErrUpstreamRedirect = errors.New("sessions: upstream redirected")
)
