package ticketclient

import (
	"context"

	tickets_api "github.com/BearBump/TicketBox/internal/api/tickets_api"
	"github.com/BearBump/TicketBox/internal/models"
	"github.com/BearBump/TicketBox/internal/services/lookup"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCTransport struct {
	conn *grpc.ClientConn
}

func NewGRPC(addr string) (*GRPCTransport, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrap(err, "grpc client")
	}
	return &GRPCTransport{conn: conn}, nil
}

func (c *GRPCTransport) Close() error {
	return c.conn.Close()
}

func (c *GRPCTransport) Lookup(ctx context.Context, code string) (*models.Ticket, error) {
	out := &structpb.Struct{}
	err := c.conn.Invoke(ctx, tickets_api.LookupTicketFullMethod, wrapperspb.String(code), out)
	if err != nil {
		st := status.Convert(err)
		switch st.Code() {
		case codes.Unavailable:
			// the server itself answers Unavailable when its storage is down
			if st.Message() == lookup.MessageTransportFailure {
				return nil, &APIError{Status: int(st.Code()), Message: st.Message()}
			}
			return nil, errors.Wrap(ErrNetwork, st.Message())
		case codes.DeadlineExceeded, codes.Canceled:
			return nil, errors.Wrap(ErrNetwork, st.Message())
		case codes.InvalidArgument, codes.NotFound, codes.ResourceExhausted:
			return nil, &APIError{Status: int(st.Code()), Message: st.Message()}
		default:
			return nil, &APIError{Status: int(st.Code()), Message: MessageGeneric}
		}
	}
	t := tickets_api.TicketFromStruct(out)
	return &t, nil
}
