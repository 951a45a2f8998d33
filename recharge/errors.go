package recharge

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ggoodman/recharge-mcp-go/sessions"
)

// APIError is a non-auth upstream rejection (400/422/429 and friends),
// carrying the upstream status and message for the caller's logs.
type APIError struct {
	Status  int
	Op      string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("recharge: %s: upstream status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("recharge: %s: upstream status %d: %s", e.Op, e.Status, e.Message)
}

// RedirectError is returned when the upstream answers with a 30x. Redirects
// from this API historically mean a misconfigured credential or URL, so they
// are surfaced as a hard error and never followed. It matches both
// sessions.ErrUnauthorized and sessions.ErrUpstreamRedirect.
type RedirectError struct {
	Status   int
	Op       string
	Location string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("recharge: %s: unexpected redirect %d to %q", e.Op, e.Status, e.Location)
}

func (e *RedirectError) Unwrap() []error {
	return []error{sessions.ErrUnauthorized, sessions.ErrUpstreamRedirect}
}

// statusError maps a non-2xx response onto the sessions taxonomy.
func statusError(op string, status int, location, message string) error {
	switch {
	case status >= 300 && status < 400:
		return &RedirectError{Status: status, Op: op, Location: location}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("recharge: %s: upstream status %d: %w", op, status, sessions.ErrUnauthorized)
	case status == http.StatusNotFound:
		return fmt.Errorf("recharge: %s: %w", op, sessions.ErrNotFound)
	case status >= 500:
		return fmt.Errorf("recharge: %s: upstream status %d: %w", op, status, sessions.ErrUpstreamUnavailable)
	default:
		return &APIError{Status: status, Op: op, Message: message}
	}
}

// transportError maps a request-level failure (dial, TLS, timeout, canceled
// context) onto the taxonomy.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("recharge: %s: %w", op, err)
	}
	return fmt.Errorf("recharge: %s: %v: %w", op, err, sessions.ErrUpstreamUnavailable)
}
