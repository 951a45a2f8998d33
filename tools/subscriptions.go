package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listSubscriptionsArgs struct {
	CustomerHints
	listArgs
	Status string `json:"status,omitempty" jsonschema:"description=Filter by subscription status,enum=active,enum=cancelled,enum=expired"`
}

type getSubscriptionArgs struct {
	CustomerHints
	SubscriptionID string `json:"subscription_id" jsonschema:"description=Id of the subscription"`
}

type createSubscriptionArgs struct {
	CustomerHints
	Fields map[string]any `json:"fields" jsonschema:"description=Subscription fields; passed through to the API"`
}

type updateSubscriptionArgs struct {
	CustomerHints
	SubscriptionID string         `json:"subscription_id" jsonschema:"description=Id of the subscription"`
	Fields         map[string]any `json:"fields" jsonschema:"description=Subscription fields to update; passed through to the API"`
}

type cancelSubscriptionArgs struct {
	CustomerHints
	SubscriptionID string `json:"subscription_id" jsonschema:"description=Id of the subscription"`
	Reason         string `json:"cancellation_reason,omitempty" jsonschema:"description=Reason recorded with the cancellation"`
}

type activateSubscriptionArgs struct {
	CustomerHints
	SubscriptionID string `json:"subscription_id" jsonschema:"description=Id of the subscription"`
}

type setNextChargeDateArgs struct {
	CustomerHints
	SubscriptionID string `json:"subscription_id" jsonschema:"description=Id of the subscription"`
	Date           string `json:"date" jsonschema:"description=Next charge date in YYYY-MM-DD form"`
}

func registerSubscriptionTools(srv *mcp.Server, d *Deps) {
	addTool(srv, "recharge_list_subscriptions",
		"List subscriptions visible to the current session.",
		func(ctx context.Context, args listSubscriptionsArgs) *mcp.CallToolResult {
			return d.run(ctx, "recharge_list_subscriptions", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ListSubscriptions(ctx, token, args.params(), args.Status)
			})
		})

	addTool(srv, "recharge_get_subscription",
		"Fetch a single subscription.",
		func(ctx context.Context, args getSubscriptionArgs) *mcp.CallToolResult {
			if args.SubscriptionID == "" {
				return invalidArgs("subscription_id is required")
			}
			return d.run(ctx, "recharge_get_subscription", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.GetSubscription(ctx, token, args.SubscriptionID)
			})
		})

	addTool(srv, "recharge_create_subscription",
		"Create a subscription.",
		func(ctx context.Context, args createSubscriptionArgs) *mcp.CallToolResult {
			if len(args.Fields) == 0 {
				return invalidArgs("fields is required")
			}
			return d.run(ctx, "recharge_create_subscription", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.CreateSubscription(ctx, token, args.Fields)
			})
		})

	addTool(srv, "recharge_update_subscription",
		"Update fields on a subscription.",
		func(ctx context.Context, args updateSubscriptionArgs) *mcp.CallToolResult {
			if args.SubscriptionID == "" {
				return invalidArgs("subscription_id is required")
			}
			return d.run(ctx, "recharge_update_subscription", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.UpdateSubscription(ctx, token, args.SubscriptionID, args.Fields)
			})
		})

	addTool(srv, "recharge_cancel_subscription",
		"Cancel a subscription.",
		func(ctx context.Context, args cancelSubscriptionArgs) *mcp.CallToolResult {
			if args.SubscriptionID == "" {
				return invalidArgs("subscription_id is required")
			}
			return d.run(ctx, "recharge_cancel_subscription", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.CancelSubscription(ctx, token, args.SubscriptionID, args.Reason)
			})
		})

	addTool(srv, "recharge_activate_subscription",
		"Re-activate a cancelled subscription.",
		func(ctx context.Context, args activateSubscriptionArgs) *mcp.CallToolResult {
			if args.SubscriptionID == "" {
				return invalidArgs("subscription_id is required")
			}
			return d.run(ctx, "recharge_activate_subscription", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.ActivateSubscription(ctx, token, args.SubscriptionID)
			})
		})

	addTool(srv, "recharge_set_next_charge_date",
		"Set the next charge date of a subscription.",
		func(ctx context.Context, args setNextChargeDateArgs) *mcp.CallToolResult {
			if args.SubscriptionID == "" || args.Date == "" {
				return invalidArgs("subscription_id and date are required")
			}
			return d.run(ctx, "recharge_set_next_charge_date", args.hints(), func(ctx context.Context, token string) (json.RawMessage, error) {
				return d.API.SetNextChargeDate(ctx, token, args.SubscriptionID, args.Date)
			})
		})
}
