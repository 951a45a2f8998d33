package recharge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ggoodman/recharge-mcp-go/sessions"
)

// AdminGateway binds the privileged admin credential to the two operations
// the session subsystem needs: customer lookup by email and session
// minting. The admin token is used for nothing else; ordinary
// customer-scoped calls always run with a session token.
type AdminGateway struct {
	c         *Client
	token     string
	returnURL string
}

// GatewayOption customizes an AdminGateway.
type GatewayOption func(*AdminGateway)

// WithReturnURL sets the return_url sent with session creation requests.
func WithReturnURL(u string) GatewayOption {
	return func(g *AdminGateway) { g.returnURL = u }
}

// NewAdminGateway wraps client with the admin credential.
func NewAdminGateway(c *Client, adminToken string, opts ...GatewayOption) *AdminGateway {
	g := &AdminGateway{c: c, token: adminToken}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FindCustomerIDByEmail resolves an email to the single matching customer
// id. Zero matches is ErrNotFound; more than one is ErrAmbiguousCustomer —
// the gateway never silently picks the first candidate.
func (g *AdminGateway) FindCustomerIDByEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: empty email", sessions.ErrInvalidArgument)
	}

	q := url.Values{"email": {email}}
	raw, err := g.c.Get(ctx, g.token, "/customers", q)
	if err != nil {
		return "", err
	}

	var reply struct {
		Customers []struct {
			ID json.Number `json:"id"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", fmt.Errorf("recharge: decode customer lookup: %w", err)
	}

	switch len(reply.Customers) {
	case 0:
		return "", fmt.Errorf("recharge: no customer for email: %w", sessions.ErrNotFound)
	case 1:
		return reply.Customers[0].ID.String(), nil
	default:
		return "", fmt.Errorf("recharge: %d customers for email: %w", len(reply.Customers), sessions.ErrAmbiguousCustomer)
	}
}

// CreateSession mints a customer-scoped session token via the admin-only
// sessions endpoint. The token arrives nested in the customer_session
// object.
func (g *AdminGateway) CreateSession(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", fmt.Errorf("%w: empty customer id", sessions.ErrInvalidArgument)
	}
	if _, err := strconv.ParseInt(customerID, 10, 64); err != nil {
		return "", fmt.Errorf("%w: customer id %q is not numeric", sessions.ErrInvalidArgument, customerID)
	}

	body := map[string]any{}
	if g.returnURL != "" {
		body["return_url"] = g.returnURL
	}

	raw, err := g.c.Post(ctx, g.token, "/customers/"+customerID+"/sessions", body)
	if err != nil {
		return "", err
	}

	var reply struct {
		CustomerSession struct {
			APIToken string `json:"apiToken"`
		} `json:"customer_session"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", fmt.Errorf("recharge: decode session reply: %w", err)
	}
	if reply.CustomerSession.APIToken == "" {
		return "", fmt.Errorf("recharge: session reply carried no token for customer %s", customerID)
	}
	return reply.CustomerSession.APIToken, nil
}

var _ sessions.AdminClient = (*AdminGateway)(nil)
