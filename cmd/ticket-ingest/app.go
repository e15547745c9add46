package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/TicketBox/config"
	"github.com/BearBump/TicketBox/internal/broker/kafka"
	"github.com/BearBump/TicketBox/internal/services/ingest"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
	"github.com/pkg/errors"
)

const defaultConsumerGroup = "ticket-ingest"

type eventConsumer interface {
	Consume(ctx context.Context, handler kafka.Handler) error
	Close() error
}

type ingestFactories struct {
	newStorage  func(ctx context.Context, cfg *config.Config) (repo ingest.Repository, closeFn func(), err error)
	newConsumer func(cfg *config.Config) eventConsumer
}

func defaultIngestFactories() ingestFactories {
	return ingestFactories{
		newStorage: func(ctx context.Context, cfg *config.Config) (ingest.Repository, func(), error) {
			wait := time.Duration(cfg.TicketBox.DBConnectWaitSeconds) * time.Second
			if wait <= 0 {
				wait = 60 * time.Second
			}
			st, err := openPostgresWithRetry(ctx, cfg.PostgresConnString(), wait)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newConsumer: func(cfg *config.Config) eventConsumer {
			group := cfg.TicketBox.IngestConsumerGroup
			if group == "" {
				group = defaultConsumerGroup
			}
			return kafka.NewConsumer(cfg.KafkaBrokers(), cfg.TicketIssuedTopic(), group)
		},
	}
}

// The ingest worker owns the schema, so it always asks for it.
func openPostgresWithRetry(ctx context.Context, connString string, wait time.Duration) (*pgticket.Storage, error) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgticket.New(ctx, connString, pgticket.Options{InitSchema: true})
		if err == nil {
			return st, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil, errors.Wrapf(lastErr, "postgres is not ready after %s", wait)
}

func RunTicketIngest(ctx context.Context, cfg *config.Config, f ingestFactories, onListen func(httpAddr string)) error {
	if cfg.TicketBox.ReadOnly {
		return errors.New("ticket-ingest cannot run with read_only enabled")
	}

	repo, closeFn, err := f.newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	consumer := f.newConsumer(cfg)
	defer func() { _ = consumer.Close() }()

	svc := ingest.New(repo)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpOpts := ingestHTTPOpts{
		httpAddr: cfg.TicketBox.IngestHTTPAddr,
		onListen: onListen,
		svc:      svc,
		cfg:      cfg,
	}
	if p, ok := repo.(interface{ Ping(context.Context) error }); ok {
		httpOpts.ready = p.Ping
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runIngestHTTPServer(ctx, httpOpts)
	}()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- consumer.Consume(ctx, func(ctx context.Context, m kafka.Message) error {
			err := svc.HandleMessage(ctx, m.Value)
			if errors.Is(err, ingest.ErrRejected) {
				slog.Warn("skipping rejected ticket event",
					"key", string(m.Key), "partition", m.Partition, "offset", m.Offset, "err", err)
				return nil
			}
			if err != nil {
				return err
			}
			slog.Debug("ticket event applied", "key", string(m.Key), "offset", m.Offset)
			return nil
		})
	}()

	slog.Info("ticket-ingest started", "topic", cfg.TicketIssuedTopic())

	select {
	case err := <-consumeErr:
		return err
	case err := <-httpErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
}
