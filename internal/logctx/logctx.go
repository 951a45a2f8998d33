// Package logctx enriches slog records with request-scoped attributes
// carried in the context: which tool is running and which identity the call
// was resolved to. Token values never pass through here; identity is logged
// as customer id and credential source only.
package logctx

import (
	"context"
	"log/slog"
)

type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if td, ok := ctx.Value(toolCallKey{}).(*ToolCall); ok {
		r.AddAttrs(slog.Group("tool",
			slog.String("name", td.Name),
			slog.String("invocation_id", td.InvocationID),
		))
	}

	if id, ok := ctx.Value(identityKey{}).(*Identity); ok {
		r.AddAttrs(slog.Group("identity",
			slog.String("customer_id", id.CustomerID),
			slog.String("source", id.Source),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type toolCallKey struct{}

type ToolCall struct {
	Name         string
	InvocationID string
}

func WithToolCall(ctx context.Context, tc *ToolCall) context.Context {
	return context.WithValue(ctx, toolCallKey{}, tc)
}

type identityKey struct{}

type Identity struct {
	CustomerID string
	Source     string
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}
