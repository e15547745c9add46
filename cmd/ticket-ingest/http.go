package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/TicketBox/config"
	"github.com/BearBump/TicketBox/internal/services/ingest"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ingestHTTPOpts struct {
	httpAddr string
	onListen func(httpAddr string)
	ready    func(ctx context.Context) error

	svc *ingest.Service
	cfg *config.Config
}

func newIngestRouter(opts ingestHTTPOpts) http.Handler {
	r := chi.NewRouter()

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

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.svc == nil {
			_, _ = w.Write([]byte(`{"error":"ingest not wired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(opts.svc.Stats())
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.cfg == nil {
			_, _ = w.Write([]byte(`{"error":"config not wired"}`))
			return
		}
		// No credentials here.
		group := opts.cfg.TicketBox.IngestConsumerGroup
		if group == "" {
			group = defaultConsumerGroup
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"topic":         opts.cfg.TicketIssuedTopic(),
			"consumerGroup": group,
			"brokers":       opts.cfg.KafkaBrokers(),
		})
	})

	return r
}

func runIngestHTTPServer(ctx context.Context, opts ingestHTTPOpts) error {
	if opts.httpAddr == "" {
		opts.httpAddr = ":8082"
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	srv := &http.Server{Handler: newIngestRouter(opts), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("ingest HTTP listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
