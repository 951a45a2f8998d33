package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listDiscountsArgs struct {
	CustomerHints
	listArgs
}

type getDiscountArgs struct {
	CustomerHints
	DiscountID string `json:"discount_id" jsonschema:"description=Id of the discount"`
}

func registerDiscountTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_list_discounts",
		"List discounts visible to the current session.",
		func(ctx context.Context, args listDiscountsArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_discounts", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListDiscounts(ctx, token, args.params())
			})
		})

	addTool(srv, "recharge_get_discount",
		"Fetch a single discount.",
		func(ctx context.Context, args getDiscountArgs) *mcp.CallToolResult {
			if args.DiscountID == "" {
				return invalidArgs("discount_id is required")
			}
			return d.run(ctx, "recharge_get_discount", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.GetDiscount(ctx, token, args.DiscountID)
			})
		})
}
