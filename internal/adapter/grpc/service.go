package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "schedbank.transfer.v1.TransferService"

// Full method names
const (
	MethodScheduleTransfer = "/" + ServiceName + "/ScheduleTransfer"
	MethodListTransfers    = "/" + ServiceName + "/ListTransfers"
	MethodGetTransfer      = "/" + ServiceName + "/GetTransfer"
	MethodUpdateTransfer   = "/" + ServiceName + "/UpdateTransfer"
	MethodDeleteTransfer   = "/" + ServiceName + "/DeleteTransfer"
	MethodClearTransfers   = "/" + ServiceName + "/ClearTransfers"
)

// TransferServiceServer is the server API for the transfer service.
// Transfers travel as structpb.Struct field bags keyed like domain.TransferResponse.
type TransferServiceServer interface {
	ScheduleTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransfers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetTransfer(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	UpdateTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransfer(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ClearTransfers(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// TransferServiceDesc describes the transfer service for grpc.Server registration
var TransferServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransferServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ScheduleTransfer", newStruct, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.ScheduleTransfer(ctx, in.(*structpb.Struct))
		}),
		unary("ListTransfers", newEmpty, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.ListTransfers(ctx, in.(*emptypb.Empty))
		}),
		unary("GetTransfer", newString, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.GetTransfer(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("UpdateTransfer", newStruct, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.UpdateTransfer(ctx, in.(*structpb.Struct))
		}),
		unary("DeleteTransfer", newString, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.DeleteTransfer(ctx, in.(*wrapperspb.StringValue))
		}),
		unary("ClearTransfers", newEmpty, func(s TransferServiceServer, ctx context.Context, in proto.Message) (proto.Message, error) {
			return s.ClearTransfers(ctx, in.(*emptypb.Empty))
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "schedbank/transfer/v1/transfer.proto",
}

// RegisterTransferServiceServer registers srv on s
func RegisterTransferServiceServer(s grpc.ServiceRegistrar, srv TransferServiceServer) {
	s.RegisterService(&TransferServiceDesc, srv)
}

func newStruct() proto.Message { return new(structpb.Struct) }
func newEmpty() proto.Message  { return new(emptypb.Empty) }
func newString() proto.Message { return new(wrapperspb.StringValue) }

// unary builds the method handler the way protoc-gen-go-grpc generates it
func unary(
	method string,
	newRequest func() proto.Message,
	call func(TransferServiceServer, context.Context, proto.Message) (proto.Message, error),
) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newRequest()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TransferServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(TransferServiceServer), ctx, req.(proto.Message))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
