// ticket-seed loads the sample tickets. By default it writes them straight
// into postgres, creating the schema if needed. With --publish it produces
// them as ticket.issued events and leaves the write to ticket-ingest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BearBump/TicketBox/config"
	"github.com/BearBump/TicketBox/internal/broker/kafka"
	"github.com/BearBump/TicketBox/internal/broker/messages"
	"github.com/BearBump/TicketBox/internal/logger"
	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

type publisher interface {
	PublishTicketIssued(ctx context.Context, topic string, m messages.TicketIssued) error
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath string
	var publish bool
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("ticket-seed", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("configPath"), "path to the YAML config (default: $configPath)")
	flagSet.BoolVar(&publish, "publish", false, "produce ticket.issued events instead of writing to postgres")
	flagSet.DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if configPath == "" {
		return errors.New("--config or $configPath is required")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.TicketBox.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if publish {
		p := kafka.NewProducer(cfg.KafkaBrokers())
		defer func() { _ = p.Close() }()
		return publishTickets(ctx, p, cfg.TicketIssuedTopic(), pgticket.SampleTickets(), time.Now())
	}

	if cfg.TicketBox.ReadOnly {
		return errors.New("cannot seed with read_only enabled")
	}
	st, err := pgticket.New(ctx, cfg.PostgresConnString(), pgticket.Options{InitSchema: true})
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SeedSample(ctx); err != nil {
		return err
	}
	slog.Info("sample tickets written", "count", len(pgticket.SampleTickets()))
	return nil
}

func publishTickets(ctx context.Context, p publisher, topic string, tickets []models.Ticket, now time.Time) error {
	for _, t := range tickets {
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "ticket %s", t.TicketCode)
		}
		msg := messages.NewTicketIssued(t, now)
		if err := p.PublishTicketIssued(ctx, topic, msg); err != nil {
			return err
		}
		slog.Info("ticket.issued published", "ticket_code", t.TicketCode, "event_id", msg.EventID)
	}
	return nil
}
