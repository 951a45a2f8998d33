package sessions

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// AdminClient is the privileged upstream surface the resolver needs: looking
// up a customer id from an email and minting a fresh session token. Both are
// single network calls made with the admin credential, never with a
// customer-scoped token.
type AdminClient interface {
	// FindCustomerIDByEmail returns the id of the single customer owning
	// email. It fails with ErrNotFound when no customer matches and
	// ErrAmbiguousCustomer when more than one does.
	FindCustomerIDByEmail(ctx context.Context, email string) (string, error)

	// CreateSession mints a customer-scoped session token for customerID.
	CreateSession(ctx context.Context, customerID string) (string, error)
}

// Hints carries the identity material supplied with a single request. All
// fields are optional; precedence is Token, then CustomerID, then Email.
type Hints struct {
	// Token, when set, is used as-is: the caller has asserted the identity
	// and no cache interaction or safety check applies.
	Token string

	// CustomerID names the customer the call should run as. Authoritative:
	// when set, Email is ignored even if it would resolve elsewhere.
	CustomerID string

	// Email identifies the customer indirectly via an admin lookup.
	Email string
}

// Source records how a credential was obtained.
type Source int

const (
	// SourceExplicit is a token supplied verbatim with the request.
	SourceExplicit Source = iota
	// SourceCached is a token served from the store.
	SourceCached
	// SourceMinted is a token freshly created via the admin client.
	SourceMinted
	// SourceDefault is the statically configured default token.
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceCached:
		return "cached"
	case SourceMinted:
		return "minted"
	case SourceDefault:
		return "default"
	}
	return "unknown"
}

// Credential is a resolved identity ready for an upstream call. CustomerID
// is empty for explicit and default credentials; ViaEmail is set when the
// customer was identified by email, so an invalidation can also drop the
// reverse-index backlink.
type Credential struct {
	Token      string
	CustomerID string
	ViaEmail   string
	Source     Source
}

// Retryable reports whether a 401 on a call made with this credential can
// be healed by invalidating and re-resolving. Only customer-scoped
// credentials qualify: explicit and default tokens have no alternate
// identity to fall back to.
func (c Credential) Retryable() bool {
	return c.CustomerID != ""
}

// Resolver turns per-request hints into a concrete credential, consulting
// the store on the fast path and the admin client on a miss. Concurrent
// misses for the same customer are collapsed into one upstream mint via a
// singleflight group keyed by customer id.
type Resolver struct {
	store        *Store
	admin        AdminClient
	defaultToken string
	log          *slog.Logger
	m            Metrics

	flight singleflight.Group
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithDefaultToken configures the fallback token used when a request names
// no identity and no customer sessions exist.
func WithDefaultToken(tok string) ResolverOption {
	return func(r *Resolver) { r.defaultToken = tok }
}

// WithResolverLogger overrides the logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithResolverMetrics wires a metrics sink.
func WithResolverMetrics(m Metrics) ResolverOption {
	return func(r *Resolver) { r.m = m }
}

// NewResolver constructs a Resolver over the given store and admin client.
func NewResolver(store *Store, admin AdminClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store: store,
		admin: admin,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies hint precedence, first match wins:
//
//  1. An explicit token is returned as-is.
//  2. An explicit customer id or email is resolved to a cached token, or a
//     freshly minted one on a miss.
//  3. With no identity and an empty store, the configured default token.
//  4. With no identity but customer sessions in the store, the request is
//     refused with ErrUnsafeDefaultSession.
func (r *Resolver) Resolve(ctx context.Context, h Hints) (Credential, error) {
	if h.Token != "" {
		return Credential{Token: h.Token, Source: SourceExplicit}, nil
	}

	if h.CustomerID != "" || h.Email != "" {
		return r.resolveCustomer(ctx, h)
	}

	if r.store.HasCustomerSessions() {
		if r.m != nil {
			r.m.SecurityBlock()
		}
		r.log.WarnContext(ctx, "refused default-session fallback", slog.String("reason", "customer sessions present"))
		return Credential{}, ErrUnsafeDefaultSession
	}
	if r.defaultToken == "" {
		return Credential{}, ErrNoDefaultSession
	}
	return Credential{Token: r.defaultToken, Source: SourceDefault}, nil
}

func (r *Resolver) resolveCustomer(ctx context.Context, h Hints) (Credential, error) {
	id := h.CustomerID
	viaEmail := ""

	// An explicit id is authoritative; the email hint is consulted only
	// when no id was supplied.
	if id == "" {
		cached, ok := r.store.CustomerIDByEmail(h.Email)
		if ok {
			id = cached
		} else {
			found, err := r.findByEmail(ctx, h.Email)
			if err != nil {
				return Credential{}, err
			}
			id = found
			r.store.RememberEmail(h.Email, id)
		}
		viaEmail = h.Email
	}

	if tok, ok := r.store.Get(id); ok {
		return Credential{Token: tok, CustomerID: id, ViaEmail: viaEmail, Source: SourceCached}, nil
	}

	tok, err := r.mint(ctx, id, viaEmail)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Token: tok, CustomerID: id, ViaEmail: viaEmail, Source: SourceMinted}, nil
}

func (r *Resolver) findByEmail(ctx context.Context, email string) (string, error) {
	if r.m != nil {
		r.m.EmailLookup()
	}
	id, err := r.admin.FindCustomerIDByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("resolve customer by email: %w", err)
	}
	return id, nil
}

// mint creates a session through the singleflight group so concurrent cache
// misses for one customer share a single upstream call. The winner's write
// to the store happens inside the flight; losers receive the same token.
func (r *Resolver) mint(ctx context.Context, customerID, viaEmail string) (string, error) {
	v, err, shared := r.flight.Do(customerID, func() (any, error) {
		// A concurrent resolver may have filled the cache between our miss
		// and this flight winning; honor its write.
		if tok, ok := r.store.Get(customerID); ok {
			return tok, nil
		}
		tok, err := r.admin.CreateSession(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("create session for customer %s: %w", customerID, err)
		}
		if err := r.store.Set(customerID, tok, viaEmail); err != nil {
			return nil, err
		}
		if r.m != nil {
			r.m.SessionCreated()
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.log.DebugContext(ctx, "joined in-flight session creation", slog.String("customer_id", customerID))
	}
	return v.(string), nil
}
