package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/TicketBox/config"
	"github.com/BearBump/TicketBox/internal/broker/kafka"
	"github.com/BearBump/TicketBox/internal/broker/messages"
	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/services/ingest"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu       sync.Mutex
	upserted []models.Ticket
	err      error
}

func (r *fakeRepo) UpsertTickets(ctx context.Context, items []models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.upserted = append(r.upserted, items...)
	return nil
}

func (r *fakeRepo) codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, t := range r.upserted {
		out = append(out, t.TicketCode)
	}
	return out
}

// fakeConsumer hands out its values once and then blocks until cancellation.
type fakeConsumer struct {
	values [][]byte
	done   chan struct{}
	closed bool
}

func (c *fakeConsumer) Consume(ctx context.Context, handler kafka.Handler) error {
	defer close(c.done)
	for i, v := range c.values {
		if err := handler(ctx, kafka.Message{Topic: "ticket.issued", Offset: int64(i), Value: v}); err != nil {
			return err
		}
	}
	c.done <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (c *fakeConsumer) Close() error {
	c.closed = true
	return nil
}

func event(t *testing.T, tk models.Ticket) []byte {
	t.Helper()
	b, err := json.Marshal(messages.NewTicketIssued(tk, time.Now()))
	require.NoError(t, err)
	return b
}

func factoriesFor(repo *fakeRepo, c *fakeConsumer, closed *bool) ingestFactories {
	return ingestFactories{
		newStorage: func(ctx context.Context, cfg *config.Config) (ingest.Repository, func(), error) {
			return repo, func() { *closed = true }, nil
		},
		newConsumer: func(cfg *config.Config) eventConsumer { return c },
	}
}

func TestRunTicketIngest_AppliesAndSkipsRejected(t *testing.T) {
	sample := pgticket.SampleTickets()
	broken := sample[1]
	broken.ArrivalISO = "soon"

	repo := &fakeRepo{}
	c := &fakeConsumer{
		values: [][]byte{event(t, sample[0]), []byte("{not json"), event(t, broken)},
		done:   make(chan struct{}, 1),
	}
	var storageClosed bool

	cfg := &config.Config{TicketBox: config.TicketBoxConfig{IngestHTTPAddr: "127.0.0.1:0"}}
	addrCh := make(chan string, 1)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunTicketIngest(ctx, cfg, factoriesFor(repo, c, &storageClosed), func(addr string) { addrCh <- addr })
	}()

	addr := <-addrCh
	<-c.done

	require.Equal(t, []string{"TCK-1Z9Q7M"}, repo.codes())

	resp, err := http.Get("http://" + addr + "/stats")
	require.NoError(t, err)
	var st ingest.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	_ = resp.Body.Close()
	require.Equal(t, int64(1), st.Applied)
	require.Equal(t, int64(2), st.Rejected)
	require.NotEmpty(t, st.LastEventID)

	resp, err = http.Get("http://" + addr + "/config")
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	_ = resp.Body.Close()
	require.Equal(t, "ticket.issued", out["topic"])
	require.Equal(t, defaultConsumerGroup, out["consumerGroup"])

	resp, err = http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting ingest to stop")
	}
	require.True(t, storageClosed)
	require.True(t, c.closed)
}

func TestRunTicketIngest_StoreFailureStops(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	c := &fakeConsumer{
		values: [][]byte{event(t, pgticket.SampleTickets()[0])},
		done:   make(chan struct{}, 1),
	}
	var storageClosed bool
	cfg := &config.Config{TicketBox: config.TicketBoxConfig{IngestHTTPAddr: "127.0.0.1:0"}}

	err := RunTicketIngest(context.Background(), cfg, factoriesFor(repo, c, &storageClosed), nil)
	require.EqualError(t, err, "db down")
	require.True(t, storageClosed)
}

func TestRunTicketIngest_ConflictingTicketIsSkipped(t *testing.T) {
	repo := &fakeRepo{err: &pgconn.PgError{Code: "23505", ConstraintName: "uq_tickets_prn"}}
	c := &fakeConsumer{
		values: [][]byte{event(t, pgticket.SampleTickets()[0])},
		done:   make(chan struct{}, 1),
	}
	var storageClosed bool
	cfg := &config.Config{TicketBox: config.TicketBoxConfig{IngestHTTPAddr: "127.0.0.1:0"}}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- RunTicketIngest(ctx, cfg, factoriesFor(repo, c, &storageClosed), nil) }()

	// the consumer got past the conflicting event and is waiting for more
	select {
	case <-c.done:
	case err := <-errCh:
		t.Fatalf("ingest stopped on a conflicting ticket: %v", err)
	}

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting ingest to stop")
	}
}

func TestRunTicketIngest_RefusesReadOnly(t *testing.T) {
	called := false
	f := ingestFactories{
		newStorage: func(ctx context.Context, cfg *config.Config) (ingest.Repository, func(), error) {
			called = true
			return &fakeRepo{}, nil, nil
		},
	}
	cfg := &config.Config{TicketBox: config.TicketBoxConfig{ReadOnly: true}}

	err := RunTicketIngest(context.Background(), cfg, f, nil)
	require.Error(t, err)
	require.False(t, called)
}

func TestDefaultIngestFactories_Consumer(t *testing.T) {
	f := defaultIngestFactories()
	cfg := &config.Config{Kafka: config.KafkaConfig{Host: "localhost", Port: 9092}}
	c := f.newConsumer(cfg)
	_, ok := c.(*kafka.Consumer)
	require.True(t, ok)
	require.NoError(t, c.Close())
}

func TestIngestRouter_NotReady(t *testing.T) {
	h := newIngestRouter(ingestHTTPOpts{
		ready: func(ctx context.Context) error { return errors.New("db down") },
	})
	rec := newRecorder(h, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = newRecorder(h, "/stats")
	require.JSONEq(t, `{"error":"ingest not wired"}`, rec.Body.String())
}
