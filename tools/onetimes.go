package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listOnetimesArgs struct {
	CustomerHints
	listArgs
}

type createOnetimeArgs struct {
	CustomerHints
	Fields map[string]any `json:"fields" jsonschema:"description=One-time product fields; passed through to the API"`
}

type updateOnetimeArgs struct {
	CustomerHints
	OnetimeID string         `json:"onetime_id" jsonschema:"description=Id of the one-time product"`
	Fields    map[string]any `json:"fields" jsonschema:"description=One-time product fields to update"`
}

type deleteOnetimeArgs struct {
	CustomerHints
	OnetimeID string `json:"onetime_id" jsonschema:"description=Id of the one-time product"`
}

func registerOnetimeTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_list_onetimes",
		"List one-time products visible to the current session.",
		func(ctx context.Context, args listOnetimesArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_onetimes", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListOnetimes(ctx, token, args.params())
			})
		})

	addTool(srv, "recharge_create_onetime",
		"Add a one-time product to an upcoming delivery.",
		func(ctx context.Context, args createOnetimeArgs) *mcp.CallToolResult {
			if len(args.Fields) == 0 {
				return invalidArgs("fields is required")
			}
			return d.run(ctx, "recharge_create_onetime", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.CreateOnetime(ctx, token, args.Fields)
			})
		})

	addTool(srv, "recharge_update_onetime",
		"Update a one-time product.",
		func(ctx context.Context, args updateOnetimeArgs) *mcp.CallToolResult {
			if args.OnetimeID == "" {
				return invalidArgs("onetime_id is required")
			}
			return d.run(ctx, "recharge_update_onetime", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.UpdateOnetime(ctx, token, args.OnetimeID, args.Fields)
			})
		})

	addTool(srv, "recharge_delete_onetime",
		"Remove a one-time product.",
		func(ctx context.Context, args deleteOnetimeArgs) *mcp.CallToolResult {
			if args.OnetimeID == "" {
				return invalidArgs("onetime_id is required")
			}
			return d.run(ctx, "recharge_delete_onetime", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.DeleteOnetime(ctx, token, args.OnetimeID)
			})
		})
}
