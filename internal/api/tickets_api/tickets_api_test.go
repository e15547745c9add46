package tickets_api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BearBump/TicketBox/internal/cache/rediscache"
	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/services/lookup"
	"github.com/BearBump/TicketBox/internal/storage/pgticket"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type repo struct {
	tickets []models.Ticket
	err     error
}

func (r *repo) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.tickets {
		t := r.tickets[i]
		if strings.EqualFold(t.TicketCode, code) || strings.EqualFold(t.PRN, code) {
			return &t, nil
		}
	}
	return nil, pgticket.ErrTicketNotFound
}

func newAPI(r *repo) *TicketsAPI {
	return New(lookup.New(r))
}

func doLookup(t *testing.T, h http.Handler, path string) (int, lookupResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body lookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, body
}

func TestHTTPLookup_Scenarios(t *testing.T) {
	mux, err := newAPI(&repo{tickets: pgticket.SampleTickets()}).NewGatewayMux()
	require.NoError(t, err)

	code, body := doLookup(t, mux, "/ticket?code=tck-1z9q7m")
	require.Equal(t, http.StatusOK, code)
	require.True(t, body.OK)
	require.Equal(t, pgticket.SampleTickets()[0], *body.Ticket)
	require.Empty(t, body.Error)

	// PRN matching ignores case as well
	code, body = doLookup(t, mux, "/ticket?code=prn123456")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "PRN123456", body.Ticket.PRN)

	code, body = doLookup(t, mux, "/ticket?code=XX")
	require.Equal(t, http.StatusBadRequest, code)
	require.False(t, body.OK)
	require.Equal(t, "Please enter a valid PRN or Ticket Code.", body.Error)
	require.Nil(t, body.Ticket)

	code, body = doLookup(t, mux, "/ticket")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, lookup.MessageInvalidInput, body.Error)

	code, body = doLookup(t, mux, "/ticket?code=NOPE999")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "No ticket found for that PRN / Ticket Code.", body.Error)

	code, body = doLookup(t, mux, "/api/ticket?code=%20%20TCK-7K2P9A%20")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Arjun Mehta", body.Ticket.FullName)
}

func TestHTTPLookup_ResponseFieldNames(t *testing.T) {
	mux, err := newAPI(&repo{tickets: pgticket.SampleTickets()}).NewGatewayMux()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ticket?code=TCK-1Z9Q7M", nil))

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, k := range []string{"ticketCode", "prn", "fullName", "age", "fromCity", "toCity", "route", "departureISO", "arrivalISO", "etaMinutes", "status"} {
		require.Contains(t, raw["ticket"], k)
	}
	require.Equal(t, "2026-01-20T08:10:00.000Z", raw["ticket"]["departureISO"])
}

func TestHTTPLookup_StorageFailure(t *testing.T) {
	mux, err := newAPI(&repo{err: errors.New("connection refused")}).NewGatewayMux()
	require.NoError(t, err)

	code, body := doLookup(t, mux, "/ticket?code=PRN123456")
	require.Equal(t, http.StatusInternalServerError, code)
	require.False(t, body.OK)
	require.Equal(t, lookup.MessageTransportFailure, body.Error)
	require.NotContains(t, body.Error, "connection refused")
}

func TestGRPCLookup(t *testing.T) {
	api := newAPI(&repo{tickets: pgticket.SampleTickets()})

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := grpc.NewServer()
	RegisterTicketsServiceServer(s, api)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	out := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, LookupTicketFullMethod, wrapperspb.String("Tck-1z9q7m"), out))
	require.Equal(t, pgticket.SampleTickets()[0], TicketFromStruct(out))

	err = conn.Invoke(ctx, LookupTicketFullMethod, wrapperspb.String("XX"), &structpb.Struct{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Equal(t, lookup.MessageInvalidInput, status.Convert(err).Message())

	err = conn.Invoke(ctx, LookupTicketFullMethod, wrapperspb.String("NOPE999"), &structpb.Struct{})
	require.Equal(t, codes.NotFound, status.Code(err))
	require.Equal(t, lookup.MessageNotFound, status.Convert(err).Message())
}

func TestGRPCLookup_StorageFailure(t *testing.T) {
	api := newAPI(&repo{err: errors.New("db down")})
	_, err := api.LookupTicket(context.Background(), wrapperspb.String("PRN123456"))
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Equal(t, lookup.MessageTransportFailure, status.Convert(err).Message())
}

func TestTicketStructRoundTrip(t *testing.T) {
	in := pgticket.SampleTickets()[1]
	s, err := TicketToStruct(&in)
	require.NoError(t, err)
	require.Equal(t, in, TicketFromStruct(s))
	require.Equal(t, models.Ticket{}, TicketFromStruct(nil))
}

func TestPageHandler(t *testing.T) {
	h := newAPI(&repo{tickets: pgticket.SampleTickets()}).PageHandler()

	render := func(path string) string {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		b, _ := io.ReadAll(rec.Body)
		return string(b)
	}

	body := render("/")
	require.Contains(t, body, "PRN / Ticket Code")
	require.NotContains(t, body, `class="error"`)

	body = render("/?code=prn123456")
	require.Contains(t, body, "Riya Sharma")
	require.Contains(t, body, "badge-confirmed")
	require.Contains(t, body, "Tue, 20 Jan 2026, 08:10 am")
	require.Contains(t, body, "<dt>ETA</dt><dd>45m</dd>")
	require.Contains(t, body, "<dt>Scheduled</dt><dd>2h 10m</dd>")

	body = render("/?code=+")
	require.Contains(t, body, MessageEmptyInput)

	body = render("/?code=XX")
	require.Contains(t, body, lookup.MessageInvalidInput)

	body = render("/?code=NOPE999")
	require.Contains(t, body, "No ticket found for that PRN / Ticket Code.")
}

func TestRateLimit_HTTP(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimit(rediscache.NewRateLimiter(mr.Addr()), 2)

	mux, err := newAPI(&repo{tickets: pgticket.SampleTickets()}).NewGatewayMux()
	require.NoError(t, err)
	h := rl.Middleware(mux)

	for i := 0; i < 2; i++ {
		code, _ := doLookup(t, h, "/ticket?code=NOPE999")
		require.Equal(t, http.StatusNotFound, code)
	}
	code, body := doLookup(t, h, "/ticket?code=TCK-1Z9Q7M")
	require.Equal(t, http.StatusTooManyRequests, code)
	require.Equal(t, MessageRateLimited, body.Error)

	// requests without a code are not counted
	code, _ = doLookup(t, h, "/ticket")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimit(rediscache.NewRateLimiter(mr.Addr()), 1)
	mr.Close()

	mux, err := newAPI(&repo{tickets: pgticket.SampleTickets()}).NewGatewayMux()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		code, _ := doLookup(t, rl.Middleware(mux), "/ticket?code=TCK-1Z9Q7M")
		require.Equal(t, http.StatusOK, code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	require.Nil(t, NewRateLimit(nil, 10))
	require.Nil(t, NewRateLimit(rediscache.NewRateLimiter("localhost:0"), 0))

	var rl *RateLimit
	require.True(t, rl.allow(context.Background(), "c"))
}

func TestRateLimit_GRPCInterceptor(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimit(rediscache.NewRateLimiter(mr.Addr()), 1)
	api := newAPI(&repo{tickets: pgticket.SampleTickets()})

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := grpc.NewServer(grpc.UnaryInterceptor(rl.UnaryInterceptor()))
	RegisterTicketsServiceServer(s, api)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	require.NoError(t, conn.Invoke(ctx, LookupTicketFullMethod, wrapperspb.String("TCK-1Z9Q7M"), &structpb.Struct{}))
	err = conn.Invoke(ctx, LookupTicketFullMethod, wrapperspb.String("TCK-1Z9Q7M"), &structpb.Struct{})
	require.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestSwaggerJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(SwaggerJSON, &doc))
	require.Equal(t, "2.0", doc["swagger"])
}
