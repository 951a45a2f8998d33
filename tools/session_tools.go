package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// The session tools operate on the local cache only; they make no upstream
// calls and need no resolved identity.

type clearSessionArgs struct {
	CustomerID string `json:"customer_id" jsonschema:"description=Customer whose cached session should be dropped"`
}

type sessionStatsArgs struct{}

func registerSessionTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_clear_customer_session",
		"Drop the cached session for a customer, forcing a fresh one on the next call.",
		func(ctx context.Context, args clearSessionArgs) *mcp.CallToolResult {
			if args.CustomerID == "" {
				return invalidArgs("customer_id is required")
			}
			d.Store.Clear(args.CustomerID)
			return jsonResult(json.RawMessage(`{"cleared":true}`))
		})

	addTool(srv, "recharge_session_stats",
		"Report how many customer sessions are cached, live, and expired.",
		func(ctx context.Context, args sessionStatsArgs) *mcp.CallToolResult {
			raw, err := json.Marshal(d.Store.Stats())
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(raw)
		})
}
