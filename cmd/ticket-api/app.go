package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	tickets_api "github.com/BearBump/TicketBox/internal/api/tickets_api"
	"github.com/BearBump/TicketBox/internal/services/lookup"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
)

type ticketAPIOpts struct {
	grpcAddr string
	httpAddr string

	// nil disables rate limiting
	rateLimit *tickets_api.RateLimit
	// trustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only safe behind a proxy that overwrites those headers.
	trustProxy bool
	ready     func(ctx context.Context) error

	onListen func(grpcAddr, httpAddr string)
}

func runTicketAPI(ctx context.Context, opts ticketAPIOpts, svc *lookup.Service) error {
	api := tickets_api.New(svc)

	grpcLis, err := net.Listen("tcp", opts.grpcAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		_ = grpcLis.Close()
		return err
	}

	if opts.onListen != nil {
		opts.onListen(grpcLis.Addr().String(), httpLis.Addr().String())
	}

	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- runGRPCServer(ctx, grpcLis, api, opts.rateLimit)
	}()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runGatewayServer(ctx, httpLis, api, opts)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-grpcErr:
		return err
	case err := <-httpErr:
		return err
	}
}

func runGRPCServer(ctx context.Context, lis net.Listener, api *tickets_api.TicketsAPI, rl *tickets_api.RateLimit) error {
	var serverOpts []grpc.ServerOption
	if rl != nil {
		serverOpts = append(serverOpts, grpc.UnaryInterceptor(rl.UnaryInterceptor()))
	}
	s := grpc.NewServer(serverOpts...)
	tickets_api.RegisterTicketsServiceServer(s, api)

	go func() {
		<-ctx.Done()
		stopped := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			s.Stop()
		}
		_ = lis.Close()
	}()

	slog.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.Serve(lis)
}

func newRouter(api *tickets_api.TicketsAPI, opts ticketAPIOpts) (http.Handler, error) {
	mux, err := api.NewGatewayMux()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.ready != nil {
			if err := opts.ready(r.Context()); err != nil {
				slog.Warn("readiness check failed", "err", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(tickets_api.SwaggerJSON)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))

	r.Group(func(r chi.Router) {
		if opts.rateLimit != nil {
			r.Use(opts.rateLimit.Middleware)
		}
		for _, p := range tickets_api.LookupPaths {
			r.Method(http.MethodGet, p, mux)
		}
		r.Get("/", api.PageHandler())
	})

	return r, nil
}

func runGatewayServer(ctx context.Context, lis net.Listener, api *tickets_api.TicketsAPI, opts ticketAPIOpts) error {
	h, err := newRouter(api, opts)
	if err != nil {
		_ = lis.Close()
		return err
	}

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP gateway listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
