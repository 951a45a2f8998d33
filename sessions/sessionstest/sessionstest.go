// Package sessionstest provides a scriptable, call-counting fake
// AdminClient for exercising the session subsystem without a network.
package sessionstest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/recharge-mcp-go/sessions"
)

// FakeAdmin implements sessions.AdminClient against in-memory fixtures.
// The zero value is usable; all methods are safe for concurrent use.
type FakeAdmin struct {
	mu sync.Mutex

	// Customers maps email -> customer id for lookups.
	customers map[string]string
	// ambiguous marks emails whose lookup should report multiple matches.
	ambiguous map[string]bool

	// errors scripted per customer id for CreateSession.
	createErrs map[string]error

	lookupCalls atomic.Int64
	createCalls atomic.Int64
	minted      atomic.Int64
}

// NewFakeAdmin builds an empty fake.
func NewFakeAdmin() *FakeAdmin {
	return &FakeAdmin{
		customers:  make(map[string]string),
		ambiguous:  make(map[string]bool),
		createErrs: make(map[string]error),
	}
}

// AddCustomer registers an email for lookup.
func (f *FakeAdmin) AddCustomer(email, customerID string) {
	f.mu.Lock()
	f.customers[email] = customerID
	f.mu.Unlock()
}

// MarkAmbiguous makes lookups for email report multiple matches.
func (f *FakeAdmin) MarkAmbiguous(email string) {
	f.mu.Lock()
	f.ambiguous[email] = true
	f.mu.Unlock()
}

// FailCreate scripts an error for session creation for a customer id.
func (f *FakeAdmin) FailCreate(customerID string, err error) {
	f.mu.Lock()
	f.createErrs[customerID] = err
	f.mu.Unlock()
}

// LookupCalls reports how many email lookups were made.
func (f *FakeAdmin) LookupCalls() int { return int(f.lookupCalls.Load()) }

// CreateCalls reports how many session creations were attempted.
func (f *FakeAdmin) CreateCalls() int { return int(f.createCalls.Load()) }

func (f *FakeAdmin) FindCustomerIDByEmail(ctx context.Context, email string) (string, error) {
	f.lookupCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ambiguous[email] {
		return "", fmt.Errorf("email %s: %w", email, sessions.ErrAmbiguousCustomer)
	}
	id, ok := f.customers[email]
	if !ok {
		return "", fmt.Errorf("email %s: %w", email, sessions.ErrNotFound)
	}
	return id, nil
}

// CreateSession mints "tok-<id>-<n>" where n increments per mint, so tests
// can tell successive generations apart.
func (f *FakeAdmin) CreateSession(ctx context.Context, customerID string) (string, error) {
	f.createCalls.Add(1)
	f.mu.Lock()
	err := f.createErrs[customerID]
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tok-%s-%d", customerID, f.minted.Add(1)), nil
}

var _ sessions.AdminClient = (*FakeAdmin)(nil)
