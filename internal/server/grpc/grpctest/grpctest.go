// Package grpctest runs a store server over an in-memory listener for
// end-to-end tests of the client.
package grpctest

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	servergrpc "github.com/dmitrijs2005/gophstore/internal/server/grpc"
	"github.com/dmitrijs2005/gophstore/internal/server/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const (
	// Target is the address clients pass to dial the test server.
	Target = "passthrough:///bufnet"

	Secret    = "test-secret"
	SecretKey = "test-signing-key"
)

type Server struct {
	Store *store.Store
	lis   *bufconn.Listener
}

// Start serves a fresh store until the test ends. Tokens live for tokenTTL.
func Start(t testing.TB, tokenTTL time.Duration, opts ...store.Option) *Server {
	t.Helper()

	st := store.New(opts...)
	srv, err := servergrpc.NewGRPCServer("bufnet", logging.Nop(), st, SecretKey, Secret, tokenTTL)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &Server{Store: st, lis: lis}
}

// DialOptions route Target to the in-memory listener.
func (s *Server) DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.lis.DialContext(ctx)
		}),
	}
}
