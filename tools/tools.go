package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ggoodman/recharge-mcp-go/internal/logctx"
	"github.com/ggoodman/recharge-mcp-go/recharge"
	"github.com/ggoodman/recharge-mcp-go/sessions"
)

// Deps carries the collaborators every tool handler needs.
type Deps struct {
	API   *recharge.Client
	Orc   *sessions.Orchestrator
	Store *sessions.Store
	Log   *slog.Logger
}

// CustomerHints is embedded in every tool's argument struct. All fields are
// optional; precedence is session_token, then customer_id, then
// customer_email. With none set the call runs as the configured default
// session, which is refused once any customer session has been cached.
type CustomerHints struct {
	SessionToken  string `json:"session_token,omitempty" jsonschema:"description=Existing session token to use verbatim for this call"`
	CustomerID    string `json:"customer_id,omitempty" jsonschema:"description=Recharge customer id to act as"`
	CustomerEmail string `json:"customer_email,omitempty" jsonschema:"description=Email address of the customer to act as"`
}

func (h CustomerHints) hints() sessions.Hints {
	return sessions.Hints{
		Token:      h.SessionToken,
		CustomerID: h.CustomerID,
		Email:      h.CustomerEmail,
	}
}

// apiCall is the per-tool body: one upstream request with the resolved
// token, returning the raw reply.
type apiCall func(ctx context.Context, token string) (json.RawMessage, error)

// run routes one tool invocation through the orchestrator and renders the
// outcome as a tool result. Errors become IsError results rather than
// protocol failures so the model sees what went wrong.
func (d *Deps) run(ctx context.Context, name string, h sessions.Hints, call apiCall) *mcp.CallToolResult {
	ctx = logctx.WithToolCall(ctx, &logctx.ToolCall{
		Name:         name,
		InvocationID: uuid.NewString(),
	})
	ctx = logctx.WithIdentity(ctx, &logctx.Identity{CustomerID: h.CustomerID})

	var raw json.RawMessage
	err := d.Orc.Do(ctx, h, func(ctx context.Context, token string) error {
		var callErr error
		raw, callErr = call(ctx, token)
		return callErr
	})
	if err != nil {
		d.Log.WarnContext(ctx, "tool call failed", slog.String("kind", errorKind(err)), slog.String("error", err.Error()))
		return errorResult(err)
	}

	d.Log.InfoContext(ctx, "tool call complete")
	return jsonResult(raw)
}

// jsonResult pretty-prints an upstream reply into a text content block.
// A reply that is somehow not valid JSON is passed through untouched.
func jsonResult(raw json.RawMessage) *mcp.CallToolResult {
	text := string(raw)
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err == nil {
		text = buf.String()
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult renders a taxonomy error for the model. The kind tag gives
// the model something stable to branch on; the message never contains token
// material.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("error [%s]: %s", errorKind(err), err.Error()),
		}},
	}
}

func errorKind(err error) string {
	var apiErr *recharge.APIError
	switch {
	case errors.Is(err, sessions.ErrUnsafeDefaultSession):
		return "security"
	case errors.Is(err, sessions.ErrUpstreamRedirect):
		return "redirect"
	case errors.Is(err, sessions.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, sessions.ErrAmbiguousCustomer):
		return "ambiguous_customer"
	case errors.Is(err, sessions.ErrNotFound):
		return "not_found"
	case errors.Is(err, sessions.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, sessions.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, sessions.ErrNoDefaultSession):
		return "no_default_session"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "internal"
	}
}

// invalidArgs is for argument problems detected before any network call.
func invalidArgs(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{
			Text: "error [invalid_argument]: " + msg,
		}},
	}
}

// addTool registers one typed tool on the server with a strict reflected
// input schema.
func addTool[A any](srv *mcp.Server, name, desc string, h func(ctx context.Context, args A) *mcp.CallToolResult) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        name,
		Description: desc,
		InputSchema: schemaFor[A](),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args A) (*mcp.CallToolResult, any, error) {
		return h(ctx, args), nil, nil
	})
}

// Register installs the full tool surface on srv.
func Register(srv *mcp.Server, d *Deps) {
	registerCustomerTools(srv, d)
	registerSubscriptionTools(srv, d)
	registerAddressTools(srv, d)
	registerChargeTools(srv, d)
	registerOrderTools(srv, d)
	registerOnetimeTools(srv, d)
	registerDiscountTools(srv, d)
	registerSessionTools(srv, d)
}
