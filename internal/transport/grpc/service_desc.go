package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "calendar.v1.CalendarService"

	findAvailableTimeslotsMethod = "/" + ServiceName + "/FindAvailableTimeslots"
	addAppointmentMethod         = "/" + ServiceName + "/AddAppointment"
	keepAppointmentMethod        = "/" + ServiceName + "/KeepAppointment"
	deleteAppointmentMethod      = "/" + ServiceName + "/DeleteAppointment"
)

// CalendarServiceServer is the server side of calendar.v1.CalendarService.
// Messages are protobuf well-known types so no generated code is needed.
type CalendarServiceServer interface {
	FindAvailableTimeslots(ctx context.Context, req *timestamppb.Timestamp) (*structpb.ListValue, error)
	AddAppointment(ctx context.Context, req *timestamppb.Timestamp) (*structpb.Struct, error)
	KeepAppointment(ctx context.Context, req *timestamppb.Timestamp) (*structpb.Struct, error)
	DeleteAppointment(ctx context.Context, req *timestamppb.Timestamp) (*wrapperspb.BoolValue, error)
}

func RegisterCalendarServiceServer(s grpc.ServiceRegistrar, srv CalendarServiceServer) {
	s.RegisterService(&CalendarServiceDesc, srv)
}

var CalendarServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalendarServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "FindAvailableTimeslots",
			Handler: unaryHandler(findAvailableTimeslotsMethod, func(srv CalendarServiceServer, ctx context.Context, req *timestamppb.Timestamp) (any, error) {
				return srv.FindAvailableTimeslots(ctx, req)
			}),
		},
		{
			MethodName: "AddAppointment",
			Handler: unaryHandler(addAppointmentMethod, func(srv CalendarServiceServer, ctx context.Context, req *timestamppb.Timestamp) (any, error) {
				return srv.AddAppointment(ctx, req)
			}),
		},
		{
			MethodName: "KeepAppointment",
			Handler: unaryHandler(keepAppointmentMethod, func(srv CalendarServiceServer, ctx context.Context, req *timestamppb.Timestamp) (any, error) {
				return srv.KeepAppointment(ctx, req)
			}),
		},
		{
			MethodName: "DeleteAppointment",
			Handler: unaryHandler(deleteAppointmentMethod, func(srv CalendarServiceServer, ctx context.Context, req *timestamppb.Timestamp) (any, error) {
				return srv.DeleteAppointment(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calendar/v1/calendar.proto",
}

type timestampCall func(srv CalendarServiceServer, ctx context.Context, req *timestamppb.Timestamp) (any, error)

func unaryHandler(fullMethod string, call timestampCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(timestamppb.Timestamp)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalendarServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CalendarServiceServer), ctx, req.(*timestamppb.Timestamp))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CalendarServiceClient calls calendar.v1.CalendarService over conn.
type CalendarServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCalendarServiceClient(cc grpc.ClientConnInterface) *CalendarServiceClient {
	return &CalendarServiceClient{cc: cc}
}

func (c *CalendarServiceClient) FindAvailableTimeslots(ctx context.Context, in *timestamppb.Timestamp, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, findAvailableTimeslotsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalendarServiceClient) AddAppointment(ctx context.Context, in *timestamppb.Timestamp, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, addAppointmentMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalendarServiceClient) KeepAppointment(ctx context.Context, in *timestamppb.Timestamp, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, keepAppointmentMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CalendarServiceClient) DeleteAppointment(ctx context.Context, in *timestamppb.Timestamp, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, deleteAppointmentMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
