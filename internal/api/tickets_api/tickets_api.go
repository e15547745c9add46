package tickets_api

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/services/lookup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type TicketsAPI struct {
	svc *lookup.Service
}

func New(svc *lookup.Service) *TicketsAPI {
	return &TicketsAPI{svc: svc}
}

// lookup wraps the service call with metrics and logging shared by every transport.
func (a *TicketsAPI) lookup(ctx context.Context, transport, code string) (*models.Ticket, error) {
	start := time.Now()
	t, err := a.svc.Lookup(ctx, code)
	lookupDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())

	outcome := outcomeOf(err)
	lookupsTotal.WithLabelValues(transport, outcome).Inc()
	if lookup.IsTransportFailure(err) {
		slog.Error("ticket lookup failed", "transport", transport, "err", err)
	} else {
		slog.Debug("ticket lookup", "transport", transport, "outcome", outcome)
	}
	return t, err
}

func (a *TicketsAPI) LookupTicket(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	t, err := a.lookup(ctx, "grpc", req.GetValue())
	if err != nil {
		return nil, status.Error(grpcCode(err), lookup.MessageFor(err))
	}
	out, err := TicketToStruct(t)
	if err != nil {
		return nil, status.Error(codes.Internal, lookup.MessageTransportFailure)
	}
	return out, nil
}

func grpcCode(err error) codes.Code {
	switch outcomeOf(err) {
	case "invalid_input":
		return codes.InvalidArgument
	case "not_found":
		return codes.NotFound
	default:
		return codes.Unavailable
	}
}
