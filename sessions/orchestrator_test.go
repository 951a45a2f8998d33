package sessions_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ggoodman/recharge-mcp-go/sessions"
	"github.com/ggoodman/recharge-mcp-go/sessions/sessionstest"
)

func newOrchestrator(t *testing.T, opts ...sessions.ResolverOption) (*sessions.Orchestrator, *sessions.Store, *sessionstest.FakeAdmin) {
	t.Helper()
	store := sessions.NewStore()
	admin := sessionstest.NewFakeAdmin()
	r := sessions.NewResolver(store, admin, opts...)
	return sessions.NewOrchestrator(r, store), store, admin
}

func TestOrchestratorSuccess(t *testing.T) {
	o, _, admin := newOrchestrator(t)

	var seen string
	err := o.Do(context.Background(), sessions.Hints{CustomerID: "42"}, func(ctx context.Context, token string) error {
		seen = token
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if seen == "" {
		t.Fatal("call never received a token")
	}
	if admin.CreateCalls() != 1 {
		t.Fatalf("CreateCalls = %d, want 1", admin.CreateCalls())
	}
}

func TestOrchestratorHealsStaleSessionOn401(t *testing.T) {
	o, store, admin := newOrchestrator(t)
	ctx := context.Background()

	// Seed a stale token the upstream will reject.
	if err := store.Set("42", "stale-tok", ""); err != nil {
		t.Fatal(err)
	}

	var calls []string
	err := o.Do(ctx, sessions.Hints{CustomerID: "42"}, func(ctx context.Context, token string) error {
		calls = append(calls, token)
		if token == "stale-tok" {
			return fmt.Errorf("upstream says no: %w", sessions.ErrUnauthorized)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(calls) != 2 || calls[0] != "stale-tok" || calls[1] == "stale-tok" {
		t.Fatalf("calls = %v, want stale then fresh", calls)
	}
	if admin.CreateCalls() != 1 {
		t.Fatalf("CreateCalls = %d, want 1 (only the retry minted)", admin.CreateCalls())
	}
	// The healed token is cached for the next request.
	if tok, ok := store.Get("42"); !ok || tok != calls[1] {
		t.Fatalf("store holds %q, %v; want the fresh token", tok, ok)
	}
}

func TestOrchestratorRetryBudgetExhausted(t *testing.T) {
	o, _, admin := newOrchestrator(t)

	calls := 0
	err := o.Do(context.Background(), sessions.Hints{CustomerID: "7"}, func(ctx context.Context, token string) error {
		calls++
		return sessions.ErrUnauthorized
	})
	if !errors.Is(err, sessions.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized surfaced", err)
	}
	if calls != 2 {
		t.Fatalf("call attempts = %d, want exactly 2", calls)
	}
	if admin.CreateCalls() != 2 {
		t.Fatalf("CreateCalls = %d, want at most 2 (bounded, no infinite loop)", admin.CreateCalls())
	}
}

func TestOrchestratorDefaultTokenNotRetried(t *testing.T) {
	o, _, _ := newOrchestrator(t, sessions.WithDefaultToken("def-tok"))

	calls := 0
	err := o.Do(context.Background(), sessions.Hints{}, func(ctx context.Context, token string) error {
		calls++
		return sessions.ErrUnauthorized
	})
	if !errors.Is(err, sessions.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no alternate identity to fall back to)", calls)
	}
}

func TestOrchestratorExplicitTokenNotRetried(t *testing.T) {
	o, _, _ := newOrchestrator(t)

	calls := 0
	err := o.Do(context.Background(), sessions.Hints{Token: "caller-tok"}, func(ctx context.Context, token string) error {
		calls++
		return sessions.ErrUnauthorized
	})
	if !errors.Is(err, sessions.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestOrchestratorRedirectNotRetried(t *testing.T) {
	o, _, _ := newOrchestrator(t)

	calls := 0
	err := o.Do(context.Background(), sessions.Hints{CustomerID: "42"}, func(ctx context.Context, token string) error {
		calls++
		return errors.Join(sessions.ErrUnauthorized, sessions.ErrUpstreamRedirect)
	})
	if !errors.Is(err, sessions.ErrUpstreamRedirect) {
		t.Fatalf("err = %v, want redirect surfaced", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (re-minting cannot fix a redirecting endpoint)", calls)
	}
}

func TestOrchestratorSecurityErrorSkipsCall(t *testing.T) {
	o, store, _ := newOrchestrator(t, sessions.WithDefaultToken("def-tok"))
	if err := store.Set("42", "tok", ""); err != nil {
		t.Fatal(err)
	}

	called := false
	err := o.Do(context.Background(), sessions.Hints{}, func(ctx context.Context, token string) error {
		called = true
		return nil
	})
	if !errors.Is(err, sessions.ErrUnsafeDefaultSession) {
		t.Fatalf("err = %v, want ErrUnsafeDefaultSession", err)
	}
	if called {
		t.Fatal("the real call must not run when resolution is refused")
	}
}

func TestOrchestratorInvalidationDropsEmailBacklink(t *testing.T) {
	o, store, admin := newOrchestrator(t)
	admin.AddCustomer("a@x.com", "42")

	// First call fails with a 401, the retry succeeds. If the invalidation
	// had left the email backlink in place, the retry would reuse it and the
	// admin would see only one lookup.
	calls := 0
	err := o.Do(context.Background(), sessions.Hints{Email: "a@x.com"}, func(ctx context.Context, token string) error {
		calls++
		if calls == 1 {
			return sessions.ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if admin.LookupCalls() != 2 {
		t.Fatalf("LookupCalls = %d, want 2 (backlink cleared with the invalidation)", admin.LookupCalls())
	}
	if admin.CreateCalls() != 2 {
		t.Fatalf("CreateCalls = %d, want 2 (fresh mint on retry)", admin.CreateCalls())
	}
	// The healed session and its backlink are in place for the next request.
	if _, ok := store.Get("42"); !ok {
		t.Fatal("healed session should be cached")
	}
	if id, ok := store.CustomerIDByEmail("a@x.com"); !ok || id != "42" {
		t.Fatalf("CustomerIDByEmail = %q, %v; want 42 rebound", id, ok)
	}
}

func TestOrchestratorUpstreamUnavailableNotRetried(t *testing.T) {
	o, _, admin := newOrchestrator(t)

	calls := 0
	err := o.Do(context.Background(), sessions.Hints{CustomerID: "42"}, func(ctx context.Context, token string) error {
		calls++
		return fmt.Errorf("dial tcp: timeout: %w", sessions.ErrUpstreamUnavailable)
	})
	if !errors.Is(err, sessions.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 || admin.CreateCalls() != 1 {
		t.Fatalf("calls = %d, creates = %d; availability failures are not ours to retry", calls, admin.CreateCalls())
	}
}
