package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ggoodman/recharge-mcp-go/recharge"
)

type getCustomerArgs struct {
	CustomerHints
}

type listCustomersArgs struct {
	CustomerHints
	listArgs
}

type updateCustomerArgs struct {
	CustomerHints
	Fields map[string]any `json:"fields" jsonschema:"description=Customer fields to update; passed through to the API"`
}

// listArgs are the shared pagination arguments of every list tool.
type listArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of results per page"`
	Page  int `json:"page,omitempty" jsonschema:"description=Page of results to fetch"`
}

func (a listArgs) params() recharge.ListParams {
	return recharge.ListParams{Limit: a.Limit, Page: a.Page}
}

func registerCustomerTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_get_customer",
		"Fetch a Recharge customer record. Requires customer_id.",
		func(ctx context.Context, args getCustomerArgs) *mcp.CallToolResult {
			if args.CustomerID == "" {
				return invalidArgs("customer_id is required")
			}
			return d.run(ctx, "recharge_get_customer", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.GetCustomer(ctx, token, args.CustomerID)
			})
		})

	addTool(srv, "recharge_list_customers",
		"List customers visible to the current session.",
		func(ctx context.Context, args listCustomersArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_customers", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListCustomers(ctx, token, args.params())
			})
		})

	addTool(srv, "recharge_update_customer",
		"Update fields on a customer record. Requires customer_id.",
		func(ctx context.Context, args updateCustomerArgs) *mcp.CallToolResult {
			if args.CustomerID == "" {
				return invalidArgs("customer_id is required")
			}
			return d.run(ctx, "recharge_update_customer", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.UpdateCustomer(ctx, token, args.CustomerID, args.Fields)
			})
		})
}
