// Package grpc serves the store over gRPC with the JSON codec of package
// wire.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/store"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address      string
	store        *store.Store
	logger       logging.Logger
	jwtSecret    []byte
	clientSecret *auth.SecretVerifier
	tokenTTL     time.Duration
	now          func() time.Time
}

// NewGRPCServer builds the server. clientSecret is either a plaintext secret
// or a digest produced by auth.HashSecret.
func NewGRPCServer(a string, l logging.Logger, st *store.Store, secretKey, clientSecret string, tokenTTL time.Duration) (*GRPCServer, error) {
	verifier, err := auth.NewSecretVerifier(clientSecret)
	if err != nil {
		return nil, err
	}

	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		store:        st,
		jwtSecret:    []byte(secretKey),
		clientSecret: verifier,
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}, nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainStreamInterceptor(s.bearerTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
