package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultMaxAttempts bounds the invalidate-and-retry loop: the initial call
// plus one retry after a 401-triggered invalidation.
const DefaultMaxAttempts = 2

// CallFunc performs the real upstream API request with the resolved token.
type CallFunc func(ctx context.Context, token string) error

// request states for the orchestrator loop. Kept explicit so the retry
// budget and terminal conditions are auditable rather than being encoded in
// thrown-and-caught control flow.
type state int

const (
	stateResolving state = iota
	stateCalling
	stateInvalidating
)

// Orchestrator is the single entry point tool handlers use. It resolves an
// identity for the request, performs the call, and on an upstream 401 for a
// customer-scoped credential clears the stale cache entry and retries once,
// forcing a fresh session mint. A 401 is authoritative ground truth that the
// cached copy is dead; invalidate-then-retry keeps the cache self-healing
// without a background refresh process.
type Orchestrator struct {
	resolver    *Resolver
	store       *Store
	log         *slog.Logger
	m           Metrics
	maxAttempts int
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger overrides the logger.
func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithOrchestratorMetrics wires a metrics sink.
func WithOrchestratorMetrics(m Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.m = m }
}

// WithMaxAttempts overrides the total attempt budget.
func WithMaxAttempts(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// NewOrchestrator builds an Orchestrator over a resolver and its store.
func NewOrchestrator(resolver *Resolver, store *Store, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		resolver:    resolver,
		store:       store,
		log:         slog.Default(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Resolve exposes bare identity resolution for callers that manage the
// upstream call themselves. Most callers should use Do instead.
func (o *Orchestrator) Resolve(ctx context.Context, h Hints) (Credential, error) {
	return o.resolver.Resolve(ctx, h)
}

// Do resolves an identity for the hints and invokes call with its token,
// retrying once on an upstream 401 when the request named a customer.
// Resolution failures terminate immediately: they indicate a caller or
// configuration problem no retry can fix.
func (o *Orchestrator) Do(ctx context.Context, h Hints, call CallFunc) error {
	var (
		cred    Credential
		attempt int
	)

	st := stateResolving
	for {
		switch st {
		case stateResolving:
			c, err := o.resolver.Resolve(ctx, h)
			if err != nil {
				return err
			}
			cred = c
			attempt++
			st = stateCalling

		case stateCalling:
			err := call(ctx, cred.Token)
			if err == nil {
				return nil
			}
			if !o.shouldRetry(err, cred, attempt) {
				return o.terminal(err, cred)
			}
			st = stateInvalidating

		case stateInvalidating:
			o.store.Clear(cred.CustomerID)
			if cred.ViaEmail != "" {
				o.store.ClearEmail(cred.ViaEmail)
			}
			if o.m != nil {
				o.m.AuthRetry()
			}
			o.log.InfoContext(ctx, "invalidated stale session, retrying",
				slog.String("customer_id", cred.CustomerID),
				slog.String("source", cred.Source.String()),
				slog.Int("attempt", attempt),
			)
			st = stateResolving
		}
	}
}

// shouldRetry gates the invalidate-and-retry transition: budget remaining,
// a customer-scoped credential to re-mint, an actual 401, and not the
// redirect flavor of unauthorized (re-minting cannot fix a misconfigured
// endpoint).
func (o *Orchestrator) shouldRetry(err error, cred Credential, attempt int) bool {
	if attempt >= o.maxAttempts {
		return false
	}
	if !cred.Retryable() {
		return false
	}
	if errors.Is(err, ErrUpstreamRedirect) {
		return false
	}
	return errors.Is(err, ErrUnauthorized)
}

// terminal annotates a surfaced error with which identity the call ran as.
// The token itself never appears; customer id and source are enough for a
// caller to log usefully.
func (o *Orchestrator) terminal(err error, cred Credential) error {
	if cred.CustomerID == "" {
		return err
	}
	return fmt.Errorf("call as customer %s (%s session): %w", cred.CustomerID, cred.Source, err)
}
