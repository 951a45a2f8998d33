package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listChargesArgs struct {
	CustomerHints
	listArgs
	Status string `json:"status,omitempty" jsonschema:"description=Filter by charge status,enum=queued,enum=skipped,enum=success,enum=error,enum=refunded"`
}

type getChargeArgs struct {
	CustomerHints
	ChargeID string `json:"charge_id" jsonschema:"description=Id of the charge"`
}

type skipChargeArgs struct {
	CustomerHints
	ChargeID       string `json:"charge_id" jsonschema:"description=Id of the charge to skip"`
	SubscriptionID string `json:"subscription_id" jsonschema:"description=Id of the subscription whose line item is skipped"`
}

func registerChargeTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_list_charges",
		"List charges visible to the current session.",
		func(ctx context.Context, args listChargesArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_charges", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListCharges(ctx, token, args.params(), args.Status)
			})
		})

	addTool(srv, "recharge_get_charge",
		"Fetch a single charge.",
		func(ctx context.Context, args getChargeArgs) *mcp.CallToolResult {
			if args.ChargeID == "" {
				return invalidArgs("charge_id is required")
			}
			return d.run(ctx, "recharge_get_charge", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.GetCharge(ctx, token, args.ChargeID)
			})
		})

	addTool(srv, "recharge_skip_charge",
		"Skip an upcoming charge for one subscription.",
		func(ctx context.Context, args skipChargeArgs) *mcp.CallToolResult {
			if args.ChargeID == "" || args.SubscriptionID == "" {
				return invalidArgs("charge_id and subscription_id are required")
			}
			return d.run(ctx, "recharge_skip_charge", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.SkipCharge(ctx, token, args.ChargeID, args.SubscriptionID)
			})
		})
}
