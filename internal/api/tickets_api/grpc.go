package tickets_api

import (
	"context"

	"github.com/BearBump/TicketBox/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service uses well-known protobuf types, so no generated code is needed:
//
//	service TicketsService {
//	  rpc LookupTicket(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	}
const (
	TicketsServiceName     = "ticketbox.TicketsService"
	LookupTicketFullMethod = "/ticketbox.TicketsService/LookupTicket"
)

type TicketsServiceServer interface {
	LookupTicket(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterTicketsServiceServer(s grpc.ServiceRegistrar, srv TicketsServiceServer) {
	s.RegisterService(&ticketsServiceDesc, srv)
}

var ticketsServiceDesc = grpc.ServiceDesc{
	ServiceName: TicketsServiceName,
	HandlerType: (*TicketsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "LookupTicket",
			Handler:    lookupTicketHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ticketbox/tickets.proto",
}

func lookupTicketHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TicketsServiceServer).LookupTicket(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LookupTicketFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TicketsServiceServer).LookupTicket(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func TicketToStruct(t *models.Ticket) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"ticketCode":   t.TicketCode,
		"prn":          t.PRN,
		"fullName":     t.FullName,
		"age":          t.Age,
		"fromCity":     t.FromCity,
		"toCity":       t.ToCity,
		"route":        t.Route,
		"departureISO": t.DepartureISO,
		"arrivalISO":   t.ArrivalISO,
		"etaMinutes":   t.ETAMinutes,
		"status":       t.Status,
	})
}

func TicketFromStruct(s *structpb.Struct) models.Ticket {
	f := s.GetFields()
	return models.Ticket{
		TicketCode:   f["ticketCode"].GetStringValue(),
		PRN:          f["prn"].GetStringValue(),
		FullName:     f["fullName"].GetStringValue(),
		Age:          int(f["age"].GetNumberValue()),
		FromCity:     f["fromCity"].GetStringValue(),
		ToCity:       f["toCity"].GetStringValue(),
		Route:        f["route"].GetStringValue(),
		DepartureISO: f["departureISO"].GetStringValue(),
		ArrivalISO:   f["arrivalISO"].GetStringValue(),
		ETAMinutes:   int(f["etaMinutes"].GetNumberValue()),
		Status:       f["status"].GetStringValue(),
	}
}
