package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/wire"
	"google.golang.org/grpc"
)

// storeService is what the hand-written service descriptor dispatches to.
type storeService interface {
	ExchangeToken(ctx context.Context, req *wire.TokenRequest) (*wire.TokenResponse, error)
	Transact(stream grpc.ServerStream) error
	List(req *wire.ListRequest, stream grpc.ServerStream) error
	Sync(req *wire.SyncRequest, stream grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: wire.ServiceName,
	HandlerType: (*storeService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExchangeToken", Handler: exchangeTokenHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Transact", Handler: transactHandler, ServerStreams: true, ClientStreams: true},
		{StreamName: "List", Handler: listHandler, ServerStreams: true},
		{StreamName: "Sync", Handler: syncHandler, ServerStreams: true},
	},
}

func exchangeTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.TokenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(storeService).ExchangeToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.MethodExchangeToken}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(storeService).ExchangeToken(ctx, req.(*wire.TokenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func transactHandler(srv any, stream grpc.ServerStream) error {
	return srv.(storeService).Transact(stream)
}

func listHandler(srv any, stream grpc.ServerStream) error {
	in := new(wire.ListRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(storeService).List(in, stream)
}

func syncHandler(srv any, stream grpc.ServerStream) error {
	in := new(wire.SyncRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(storeService).Sync(in, stream)
}
