package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listOrdersArgs struct {
	CustomerHints
	listArgs
}

type getOrderArgs struct {
	CustomerHints
	OrderID string `json:"order_id" jsonschema:"description=Id of the order"`
}

func registerOrderTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_list_orders",
		"List orders visible to the current session.",
		func(ctx context.Context, args listOrdersArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_orders", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListOrders(ctx, token, args.params())
			})
		})

	addTool(srv, "recharge_get_order",
		"Fetch a single order.",
		func(ctx context.Context, args getOrderArgs) *mcp.CallToolResult {
			if args.OrderID == "" {
				return invalidArgs("order_id is required")
			}
			return d.run(ctx, "recharge_get_order", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.GetOrder(ctx, token, args.OrderID)
			})
		})
}
