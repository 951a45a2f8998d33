package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTTL is the assumed server-side lifetime of a minted session token.
	DefaultTTL = time.Hour

	// DefaultRefreshBuffer is subtracted from the nominal lifetime when
	// testing validity so near-expiry tokens are replaced proactively
	// instead of being rejected mid-call by the upstream.
	DefaultRefreshBuffer = 5 * time.Minute
)

// Metrics receives counters from the session subsystem. Implementations
// must be safe for concurrent use. The zero behavior (nil) is a no-op.
type Metrics interface {
	CacheHit()
	CacheMiss()
	SessionCreated()
	EmailLookup()
	SweepRemoved(n int)
	AuthRetry()
	SecurityBlock()
}

// Stats is a read-only snapshot of store contents for diagnostics.
type Stats struct {
	Total         int `json:"total"`
	Valid         int `json:"valid"`
	Expired       int `json:"expired"`
	EmailMappings int `json:"email_mappings"`
}

type entry struct {
	token     string
	email     string
	createdAt time.Time
	expiresAt time.Time
}

// Store is an in-memory TTL map from customer id to a cached session token,
// with a secondary email→customer id index used to accelerate email
// resolution. The store solely owns its maps; other components read and
// mutate only through its methods.
//
// Unlike the upstream API it fronts, the store does no I/O: every method is
// synchronous and safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	emails  map[string]string

	ttl    time.Duration
	buffer time.Duration
	now    func() time.Time
	m      Metrics
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithTTL sets the assumed session lifetime.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRefreshBuffer sets the safety margin subtracted when testing validity.
func WithRefreshBuffer(d time.Duration) StoreOption {
	return func(s *Store) {
		if d >= 0 {
			s.buffer = d
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics wires a metrics sink.
func WithMetrics(m Metrics) StoreOption {
	return func(s *Store) { s.m = m }
}

// NewStore constructs an empty Store with defaults applied.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		emails:  make(map[string]string),
		ttl:     DefaultTTL,
		buffer:  DefaultRefreshBuffer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// effective expiry: an entry is live strictly before expiresAt - buffer.
func (s *Store) liveAt(e *entry, t time.Time) bool {
	return t.Before(e.expiresAt.Add(-s.buffer))
}

// Get returns the cached token for customerID if one exists and is not past
// its effective expiry. An expired entry is removed as a side effect, so a
// caller never observes a stale token without also observing its removal.
func (s *Store) Get(customerID string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[customerID]
	s.mu.RUnlock()
	if !ok {
		if s.m != nil {
			s.m.CacheMiss()
		}
		return "", false
	}

	if !s.liveAt(e, s.now()) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have replaced
		// the entry with a fresh one.
		if cur, ok := s.entries[customerID]; ok && cur == e {
			s.removeLocked(customerID, cur)
		}
		s.mu.Unlock()
		if s.m != nil {
			s.m.CacheMiss()
		}
		return "", false
	}

	if s.m != nil {
		s.m.CacheHit()
	}
	return e.token, true
}

// Set caches a freshly minted token for customerID, atomically replacing any
// prior entry for that id. The optional email, when non-empty, is recorded
// in the reverse index.
func (s *Store) Set(customerID, token, email string) error {
	if customerID == "" {
		return fmt.Errorf("%w: empty customer id", ErrInvalidArgument)
	}
	if token == "" {
		return fmt.Errorf("%w: empty token for customer %s", ErrInvalidArgument, customerID)
	}

	now := s.now()
	e := &entry{
		token:     token,
		email:     email,
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	if prev, ok := s.entries[customerID]; ok && prev.email != "" && prev.email != email {
		// The replacement carries a different (or no) email. Drop the old
		// backlink so it cannot resolve to a token the customer no longer has.
		if s.emails[prev.email] == customerID {
			delete(s.emails, prev.email)
		}
	}
	s.entries[customerID] = e
	if email != "" {
		s.emails[email] = customerID
	}
	s.mu.Unlock()
	return nil
}

// CustomerIDByEmail consults the reverse index. A miss is not an error: the
// index is an accelerator, never authoritative, and absence simply means the
// caller must perform a fresh upstream lookup.
func (s *Store) CustomerIDByEmail(email string) (string, bool) {
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	return id, ok
}

// RememberEmail records an email→customer id mapping resolved out of band
// (an upstream lookup that has not yet minted a session).
func (s *Store) RememberEmail(email, customerID string) {
	if email == "" || customerID == "" {
		return
	}
	s.mu.Lock()
	s.emails[email] = customerID
	s.mu.Unlock()
}

// Clear removes the entry for customerID and its email backlink, if any.
// Idempotent: clearing an unknown id is a no-op.
func (s *Store) Clear(customerID string) {
	s.mu.Lock()
	if e, ok := s.entries[customerID]; ok {
		s.removeLocked(customerID, e)
	}
	s.mu.Unlock()
}

// ClearEmail drops a reverse-index mapping without touching any session
// entry. Used when a mapping is discovered to be stale.
func (s *Store) ClearEmail(email string) {
	s.mu.Lock()
	delete(s.emails, email)
	s.mu.Unlock()
}

// HasCustomerSessions reports whether any customer-scoped entry exists in
// the store, expired or not. Existence, not liveness, is what matters to the
// resolver's safety check: any entry proves the process has served a
// customer-scoped request, so an identity-less request can no longer safely
// assume the default token context.
func (s *Store) HasCustomerSessions() bool {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return n > 0
}

// SweepExpired removes every entry past its effective expiry and returns the
// number removed. Safe to call concurrently with reads and writes.
func (s *Store) SweepExpired() int {
	now := s.now()
	removed := 0
	s.mu.Lock()
	for id, e := range s.entries {
		if !s.liveAt(e, now) {
			s.removeLocked(id, e)
			removed++
		}
	}
	s.mu.Unlock()
	if removed > 0 && s.m != nil {
		s.m.SweepRemoved(removed)
	}
	return removed
}

// SweepLoop runs SweepExpired on the given interval until ctx is canceled.
func (s *Store) SweepLoop(ctx context.Context, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.SweepExpired(); n > 0 && log != nil {
				log.DebugContext(ctx, "swept expired sessions", slog.Int("removed", n))
			}
		}
	}
}

// Stats returns a point-in-time snapshot of store contents.
func (s *Store) Stats() Stats {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Total:         len(s.entries),
		EmailMappings: len(s.emails),
	}
	for _, e := range s.entries {
		if s.liveAt(e, now) {
			st.Valid++
		} else {
			st.Expired++
		}
	}
	return st
}

// removeLocked deletes an entry and its email backlink. Caller holds mu.
func (s *Store) removeLocked(customerID string, e *entry) {
	delete(s.entries, customerID)
	if e.email != "" && s.emails[e.email] == customerID {
		delete(s.emails, e.email)
	}
}

// Fingerprint renders a token for logs without disclosing it: a short
// prefix plus the length. Tokens are secrets and are never logged in full.
func Fingerprint(token string) string {
	const n = 6
	if len(token) <= n {
		return fmt.Sprintf("%s… (%d)", token[:len(token)/2], len(token))
	}
	return fmt.Sprintf("%s… (%d)", token[:n], len(token))
}
