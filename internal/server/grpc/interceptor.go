package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const clientIDKey ctxKey = "clientID"

// ClientID returns the client a stream was authenticated as.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

// bearerTokenInterceptor admits data streams that carry a valid bearer token.
func (s *GRPCServer) bearerTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx := ss.Context()

	token := bearerToken(ctx)
	if token == "" {
		return status.Error(codes.Unauthenticated, "missing token")
	}

	clientID, err := auth.GetClientIDFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Info(ctx, "token rejected", "method", info.FullMethod, "error", err)
		return status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: context.WithValue(ctx, clientIDKey, clientID)})
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	token, ok := strings.CutPrefix(values[0], common.BearerPrefix)
	if !ok {
		return ""
	}
	return token
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
