package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ggoodman/recharge-mcp-go/sessions"
	"github.com/ggoodman/recharge-mcp-go/sessions/sessionstest"
)

func TestResolveExplicitToken(t *testing.T) {
	store := sessions.NewStore()
	admin := sessionstest.NewFakeAdmin()
	r := sessions.NewResolver(store, admin)

	cred, err := r.Resolve(context.Background(), sessions.Hints{Token: "caller-token"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "caller-token" || cred.Source != sessions.SourceExplicit {
		t.Fatalf("cred = %+v, want explicit caller-token", cred)
	}
	if admin.LookupCalls() != 0 || admin.CreateCalls() != 0 {
		t.Fatal("explicit token must not touch the network")
	}
}

func TestResolveByCustomerID(t *testing.T) {
	store := sessions.NewStore()
	admin := sessionstest.NewFakeAdmin()
	r := sessions.NewResolver(store, admin)
	ctx := context.Background()

	cred, err := r.Resolve(ctx, sessions.Hints{CustomerID: "42"})
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if cred.CustomerID != "42" || cred.Source != sessions.SourceMinted {
		t.Fatalf("cred = %+v, want minted for 42", cred)
	}
	if admin.CreateCalls() != 1 {
		t.Fatalf("CreateCalls = %d, want 1", admin.CreateCalls())
	}

	// Second resolution is a pure cache hit.
	cred2, err := r.Resolve(ctx, sessions.Hints{CustomerID: "42"})
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if cred2.Token != cred.Token || cred2.Source != sessions.SourceCached {
		t.Fatalf("cred2 = %+v, want cached %q", cred2, cred.Token)
	}
	if admin.CreateCalls() != 1 {
		t.Fatalf("CreateCalls = %d after cache hit, want 1", admin.CreateCalls())
	}
}

func TestResolveByEmailRoundTrip(t *testing.T) {
	store := sessions.NewStore()
	admin := sessionstest.NewFakeAdmin()
	admin.AddCustomer("a@x.com", "42")
	r := sessions.NewResolver(store, admin)
	ctx := context.Background()

	cred, err := r.Resolve(ctx, sessions.Hints{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.CustomerID != "42" || cred.ViaEmail != "a@x.com" {
		t.Fatalf("cred = %+v", cred)
	}
	if admin.LookupCalls() != 1 || admin.CreateCalls() != 1 {
		t.Fatalf("calls = %d lookups, %d creates; want exactly 1 and 1",
			admin.LookupCalls(), admin.CreateCalls())
	}

	// Same email again: zero network calls.
	cred2, err := r.Resolve(ctx, sessions.Hints{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if cred2.Token != cred.Token {
		t.Fatalf("token changed across cache hit: %q != %q", cred2.Token, cred.Token)
	}
	if admin.LookupCalls() != 1 || admin.CreateCalls() != 1 {
		t.Fatalf("cache hit made network calls: %d lookups, %d creates",
			admin.LookupCalls(), admin.CreateCalls())
	}
}

func TestResolveEmailShortCircuitsToCachedToken(t *testing.T) {
	store := sessions.NewStore()
	if err := store.Set("42", "tok-a", "a@x.com"); err != nil {
		t.Fatal(err)
	}
	admin := sessionstest.NewFakeAdmin()
	r := sessions.NewResolver(store, admin)

	cred, err := r.Resolve(context.Background(), sessions.Hints{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "tok-a" || cred.Source != sessions.SourceCached {
		t.Fatalf("cred = %+v, want cached tok-a", cred)
	}
	if admin.LookupCalls() != 0 || admin.CreateCalls() != 0 {
		t.Fatal("cached email+token must not touch the network")
	}
}

func TestResolveExplicitIDBeatsEmail(t *testing.T) {
	store := sessions.NewStore()
	if err := store.Set("5", "tok-5", "a@x.com"); err != nil {
		t.Fatal(err)
	}
	admin := sessionstest.NewFakeAdmin()
	admin.AddCustomer("a@x.com", "5")
	r := sessions.NewResolver(store, admin)

	cred, err := r.Resolve(context.Background(), sessions.Hints{CustomerID: "9", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.CustomerID != "9" {
		t.Fatalf("CustomerID = %q, want the explicit 9 over cached email's 5", cred.CustomerID)
	}
	if cred.Token == "tok-5" {
		t.Fatal("token for customer 5 served for explicit customer 9")
	}
	if admin.LookupCalls() != 0 {
		t.Fatal("explicit id must not trigger an email lookup")
	}
}

func TestResolveDefaultToken(t *testing.T) {
	store := sessions.NewStore()
	admin := sessionstest.NewFakeAdmin()
	r := sessions.NewResolver(store, admin, sessions.WithDefaultToken("def-tok"))

	cred, err := r.Resolve(context.Background(), sessions.Hints{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "def-tok" || cred.Source != sessions.SourceDefault {
		t.Fatalf("cred = %+v, want default token unchanged", cred)
	}
}

func TestResolveNoDefaultConfigured(t *testing.T) {
	r := sessions.NewResolver(sessions.NewStore(), sessionstest.NewFakeAdmin())

	_, err := r.Resolve(context.Background(), sessions.Hints{})
	if !errors.Is(err, sessions.ErrNoDefaultSession) {
		t.Fatalf("err = %v, want ErrNoDefaultSession", err)
	}
}

func TestResolveRefusesUnsafeDefault(t *testing.T) {
	store := sessions.NewStore()
	if err := store.Set("42", "tok", ""); err != nil {
		t.Fatal(err)
	}
	r := sessions.NewResolver(store, sessionstest.NewFakeAdmin(), sessions.WithDefaultToken("def-tok"))

	_, err := r.Resolve(context.Background(), sessions.Hints{})
	if !errors.Is(err, sessions.ErrUnsafeDefaultSession) {
		t.Fatalf("err = %v, want ErrUnsafeDefaultSession", err)
	}
}

func TestResolveAmbiguousEmail(t *testing.T) {
	admin := sessionstest.NewFakeAdmin()
	admin.MarkAmbiguous("shared@x.com")
	r := sessions.NewResolver(sessions.NewStore(), admin)

	_, err := r.Resolve(context.Background(), sessions.Hints{Email: "shared@x.com"})
	if !errors.Is(err, sessions.ErrAmbiguousCustomer) {
		t.Fatalf("err = %v, want ErrAmbiguousCustomer", err)
	}
}

func TestResolveUnknownEmail(t *testing.T) {
	r := sessions.NewResolver(sessions.NewStore(), sessionstest.NewFakeAdmin())

	_, err := r.Resolve(context.Background(), sessions.Hints{Email: "nobody@x.com"})
	if !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// blockingAdmin parks CreateSession until released, so concurrent resolvers
// demonstrably overlap.
type blockingAdmin struct {
	*sessionstest.FakeAdmin
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingAdmin) CreateSession(ctx context.Context, customerID string) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.FakeAdmin.CreateSession(ctx, customerID)
}

func TestResolveDeduplicatesConcurrentMints(t *testing.T) {
	admin := &blockingAdmin{
		FakeAdmin: sessionstest.NewFakeAdmin(),
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	r := sessions.NewResolver(sessions.NewStore(), admin)
	ctx := context.Background()

	const n = 5
	tokens := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred, err := r.Resolve(ctx, sessions.Hints{CustomerID: "42"})
			tokens[i], errs[i] = cred.Token, err
		}(i)
	}

	<-admin.started
	close(admin.release)
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("resolver %d: %v", i, errs[i])
		}
		if tokens[i] != tokens[0] {
			t.Fatalf("resolver %d got %q, resolver 0 got %q; want one shared mint", i, tokens[i], tokens[0])
		}
	}
	if got := admin.CreateCalls(); got != 1 {
		t.Fatalf("CreateCalls = %d, want 1 (concurrent misses should share a flight)", got)
	}
}
