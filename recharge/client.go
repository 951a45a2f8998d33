package recharge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production Recharge API endpoint.
	DefaultBaseURL = "https://api.rechargeapps.com"

	// DefaultVersion is the API version pinned in the version header.
	DefaultVersion = "2021-11"

	// DefaultTimeout bounds every upstream call. A timed-out call is a
	// failure like any other; it gets no special retry treatment.
	DefaultTimeout = 30 * time.Second

	tokenHeader   = "X-Recharge-Access-Token"
	versionHeader = "X-Recharge-Version"

	// maxErrorBody caps how much of an error reply is read for messages.
	maxErrorBody = 8 << 10
)

// Client speaks HTTP to the Recharge API. It is stateless and safe for
// concurrent use; the token to act as is supplied per call.
type Client struct {
	base    string
	http    *http.Client
	version string
	log     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client. The replacement's
// redirect policy is overridden: this client never follows redirects.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithVersion pins a different API version header.
func WithVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.version = v
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New constructs a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("recharge: invalid base url %q", baseURL)
	}
	c := &Client{
		base:    strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		version: DefaultVersion,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Redirects are a hard error in this API (see RedirectError); stop at
	// the first response so the status can be inspected.
	c.http.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// Do performs one API call as the given token and returns the raw reply
// body. A nil query and body are allowed; out-of-band failures and non-2xx
// statuses come back as taxonomy errors (see package doc).
func (c *Client) Do(ctx context.Context, token, method, path string, query url.Values, body any) (json.RawMessage, error) {
	op := method + " " + path

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("recharge: %s: encode request: %w", op, err)
		}
		rdr = bytes.NewReader(buf)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("recharge: %s: build request: %w", op, err)
	}
	req.Header.Set(tokenHeader, token)
	req.Header.Set(versionHeader, c.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "recharge api call",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		return nil, statusError(op, resp.StatusCode, resp.Header.Get("Location"), msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, err)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	return json.RawMessage(raw), nil
}

// Get is shorthand for a GET Do.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, token, http.MethodGet, path, query, nil)
}

// Post is shorthand for a POST Do.
func (c *Client) Post(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, token, http.MethodPost, path, nil, body)
}

// Put is shorthand for a PUT Do.
func (c *Client) Put(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, token, http.MethodPut, path, nil, body)
}

// Delete is shorthand for a DELETE Do.
func (c *Client) Delete(ctx context.Context, token, path string) (json.RawMessage, error) {
	return c.Do(ctx, token, http.MethodDelete, path, nil, nil)
}

// readErrorMessage extracts a human-readable message from an error reply.
// Recharge uses both {"error": "..."} and {"errors": {...}} shapes.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var shape struct {
		Error  string          `json:"error"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return ""
	}
	if shape.Error != "" {
		return shape.Error
	}
	return string(shape.Errors)
}
