package recharge

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// The resource surface below is mechanical pass-through: each method maps
// one tool onto one endpoint with the caller's token and hands back the raw
// upstream JSON. Identity resolution and retry live a layer up, in the
// sessions orchestrator.

// ListParams are the pagination knobs every list endpoint accepts. They are
// forwarded verbatim.
type ListParams struct {
	Limit int
	Page  int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

// --- Customers ---

func (c *Client) GetCustomer(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Get(ctx, token, "/customers/"+id, nil)
}

func (c *Client) ListCustomers(ctx context.Context, token string, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, token, "/customers", p.values())
}

func (c *Client) UpdateCustomer(ctx context.Context, token, id string, fields map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, token, "/customers/"+id, fields)
}

// --- Subscriptions ---

func (c *Client) ListSubscriptions(ctx context.Context, token string, p ListParams, status string) (json.RawMessage, error) {
	q := p.values()
	if status != "" {
		q.Set("status", status)
	}
	return c.Get(ctx, token, "/subscriptions", q)
}

func (c *Client) GetSubscription(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Get(ctx, token, "/subscriptions/"+id, nil)
}

func (c *Client) CreateSubscription(ctx context.Context, token string, fields map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, token, "/subscriptions", fields)
}

func (c *Client) UpdateSubscription(ctx context.Context, token, id string, fields map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, token, "/subscriptions/"+id, fields)
}

func (c *Client) CancelSubscription(ctx context.Context, token, id, reason string) (json.RawMessage, error) {
	body := map[string]any{}
	if reason != "" {
		body["cancellation_reason"] = reason
	}
	return c.Post(ctx, token, "/subscriptions/"+id+"/cancel", body)
}

func (c *Client) ActivateSubscription(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Post(ctx, token, "/subscriptions/"+id+"/activate", map[string]any{})
}

func (c *Client) SetNextChargeDate(ctx context.Context, token, id, date string) (json.RawMessage, error) {
	return c.Post(ctx, token, "/subscriptions/"+id+"/set_next_charge_date", map[string]any{"date": date})
}

// --- Addresses ---

func (c *Client) ListAddresses(ctx context.Context, token string, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, token, "/addresses", p.values())
}

func (c *Client) GetAddress(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Get(ctx, token, "/addresses/"+id, nil)
}

func (c *Client) CreateAddress(ctx context.Context, token string, fields map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, token, "/addresses", fields)
}

func (c *Client) UpdateAddress(ctx context.Context, token, id string, fields map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, token, "/addresses/"+id, fields)
}

// --- Charges ---

func (c *Client) ListCharges(ctx context.Context, token string, p ListParams, status string) (json.RawMessage, error) {
	q := p.values()
	if status != "" {
		q.Set("status", status)
	}
	return c.Get(ctx, token, "/charges", q)
}

func (c *Client) GetCharge(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Get(ctx, token, "/charges/"+id, nil)
}

func (c *Client) SkipCharge(ctx context.Context, token, id, subscriptionID string) (json.RawMessage, error) {
	return c.Post(ctx, token, "/charges/"+id+"/skip", map[string]any{"subscription_id": subscriptionID})
}

// --- Orders ---

func (c *Client) ListOrders(ctx context.Context, token string, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, token, "/orders", p.values())
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Get(ctx, token, "/orders/"+id, nil)
}

// --- One-time products ---

func (c *Client) ListOnetimes(ctx context.Context, token string, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, token, "/onetimes", p.values())
}

func (c *Client) CreateOnetime(ctx context.Context, token string, fields map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, token, "/onetimes", fields)
}

func (c *Client) UpdateOnetime(ctx context.Context, token, id string, fields map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, token, "/onetimes/"+id, fields)
}

func (c *Client) DeleteOnetime(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Delete(ctx, token, "/onetimes/"+id)
}

// --- Discounts ---

func (c *Client) ListDiscounts(ctx context.Context, token string, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, token, "/discounts", p.values())
}

func (c *Client) GetDiscount(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.Get(ctx, token, "/discounts/"+id, nil)
}
