// Command recharge-mcp serves the Recharge subscription commerce API as MCP
// tools over stdio. All logging goes to stderr; stdout carries the protocol.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ggoodman/recharge-mcp-go/internal/config"
	"github.com/ggoodman/recharge-mcp-go/internal/logctx"
	"github.com/ggoodman/recharge-mcp-go/internal/metrics"
	"github.com/ggoodman/recharge-mcp-go/recharge"
	"github.com/ggoodman/recharge-mcp-go/sessions"
	"github.com/ggoodman/recharge-mcp-go/tools"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "recharge-mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := slog.New(logctx.Handler{Handler: slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})})
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	client, err := recharge.New(cfg.APIURL,
		recharge.WithTimeout(cfg.RequestTimeout),
		recharge.WithLogger(log),
	)
	if err != nil {
		return err
	}

	store := sessions.NewStore(
		sessions.WithTTL(cfg.SessionTTL),
		sessions.WithRefreshBuffer(cfg.RefreshBuffer),
		sessions.WithMetrics(collector),
	)
	gateway := recharge.NewAdminGateway(client, cfg.AdminToken, recharge.WithReturnURL(cfg.ReturnURL))
	resolver := sessions.NewResolver(store, gateway,
		sessions.WithDefaultToken(cfg.DefaultToken),
		sessions.WithResolverLogger(log),
		sessions.WithResolverMetrics(collector),
	)
	orc := sessions.NewOrchestrator(resolver, store,
		sessions.WithOrchestratorLogger(log),
		sessions.WithOrchestratorMetrics(collector),
	)

	go store.SweepLoop(ctx, cfg.SweepInterval, log)

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, reg, log)
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "recharge-mcp", Version: version}, nil)
	tools.Register(srv, &tools.Deps{
		API:   client,
		Orc:   orc,
		Store: store,
		Log:   log,
	})

	log.InfoContext(ctx, "recharge mcp server listening on stdio",
		slog.String("api_url", cfg.APIURL),
		slog.Bool("admin_configured", cfg.AdminToken != ""),
		slog.Bool("default_session_configured", cfg.DefaultToken != ""),
	)

	err = srv.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.InfoContext(ctx, "metrics listener starting", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "metrics listener failed", slog.String("error", err.Error()))
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
