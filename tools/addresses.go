package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listAddressesArgs struct {
	CustomerHints
	listArgs
}

type getAddressArgs struct {
	CustomerHints
	AddressID string `json:"address_id" jsonschema:"description=Id of the address"`
}

type createAddressArgs struct {
	CustomerHints
	Fields map[string]any `json:"fields" jsonschema:"description=Address fields; passed through to the API"`
}

type updateAddressArgs struct {
	CustomerHints
	AddressID string         `json:"address_id" jsonschema:"description=Id of the address"`
	Fields    map[string]any `json:"fields" jsonschema:"description=Address fields to update; passed through to the API"`
}

func registerAddressTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_list_addresses",
		"List addresses visible to the current session.",
		func(ctx context.Context, args listAddressesArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_addresses", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListAddresses(ctx, token, args.params())
			})
		})

	addTool(srv, "recharge_get_address",
		"Fetch a single address.",
		func(ctx context.Context, args getAddressArgs) *mcp.CallToolResult {
			if args.AddressID == "" {
				return invalidArgs("address_id is required")
			}
			return d.run(ctx, "recharge_get_address", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.GetAddress(ctx, token, args.AddressID)
			})
		})

	addTool(srv, "recharge_create_address",
		"Create an address.",
		func(ctx context.Context, args createAddressArgs) *mcp.CallToolResult {
			if len(args.Fields) == 0 {
				return invalidArgs("fields is required")
			}
			return d.run(ctx, "recharge_create_address", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.CreateAddress(ctx, token, args.Fields)
			})
		})

	addTool(srv, "recharge_update_address",
		"Update fields on an address.",
		func(ctx context.Context, args updateAddressArgs) *mcp.CallToolResult {
			if args.AddressID == "" {
				return invalidArgs("address_id is required")
			}
			return d.run(ctx, "recharge_update_address", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.UpdateAddress(ctx, token, args.AddressID, args.Fields)
			})
		})
}
