package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/TicketBox/config"
	tickets_api "github.com/BearBump/TicketBox/internal/api/tickets_api"
	"github.com/BearBump/TicketBox/internal/cache/rediscache"
	"github.com/BearBump/TicketBox/internal/logger"
	"github.com/BearBump/TicketBox/internal/services/lookup"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
)

type ticketAPIApp struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    ticketAPIOpts
	svc     *lookup.Service
	closeFn []func()
}

func mustBootstrapTicketAPI() *ticketAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("config parse error: %v", err))
	}
	logger.Setup(cfg.TicketBox.LogLevel)

	grpcAddr := cfg.TicketBox.GRPCAddr
	if grpcAddr == "" {
		grpcAddr = ":50051"
	}
	httpAddr := cfg.TicketBox.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	wait := time.Duration(cfg.TicketBox.DBConnectWaitSeconds) * time.Second
	if wait <= 0 {
		wait = 60 * time.Second
	}

	// Schema and seed are decided once here; request handling never touches them.
	storeOpts := storeOptions(cfg.TicketBox)
	st := mustOpenPostgresWithRetry(cfg.PostgresConnString(), storeOpts, wait)
	app := &ticketAPIApp{closeFn: []func(){st.Close}}

	if cfg.TicketBox.SeedSample && !cfg.TicketBox.ReadOnly {
		if err := st.SeedSample(context.Background()); err != nil {
			panic(fmt.Sprintf("seed sample tickets: %v", err))
		}
		slog.Info("sample tickets seeded", "count", len(pgticket.SampleTickets()))
	}

	var rateLimit *tickets_api.RateLimit
	if addr := cfg.RedisAddr(); addr != "" {
		rl := rediscache.NewRateLimiter(addr)
		app.closeFn = append(app.closeFn, func() { _ = rl.Close() })
		rateLimit = tickets_api.NewRateLimit(rl, cfg.LookupRateLimit())
	}

	app.svc = lookup.New(st)
	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app.opts = ticketAPIOpts{
		grpcAddr:   grpcAddr,
		httpAddr:   httpAddr,
		rateLimit:  rateLimit,
		trustProxy: cfg.TicketBox.TrustProxyHeaders,
		ready:      st.Ping,
	}

	slog.Info("ticket-api bootstrapped", "read_only", cfg.TicketBox.ReadOnly, "rate_limited", rateLimit != nil)
	return app
}

// storeOptions never asks for schema creation in read-only mode.
func storeOptions(c config.TicketBoxConfig) pgticket.Options {
	return pgticket.Options{
		ReadOnly:   c.ReadOnly,
		InitSchema: !c.ReadOnly && (c.InitSchema || c.SeedSample),
	}
}

func mustOpenPostgresWithRetry(connString string, opts pgticket.Options, wait time.Duration) *pgticket.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgticket.New(context.Background(), connString, opts)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *ticketAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closeFn) - 1; i >= 0; i-- {
		a.closeFn[i]()
	}
}

func (a *ticketAPIApp) Run() error {
	return runTicketAPI(a.ctx, a.opts, a.svc)
}
