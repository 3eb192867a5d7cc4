package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func incoming(header string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", header))
}

var listInfo = &grpc.StreamServerInfo{FullMethod: wire.MethodList, IsServerStream: true}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(nil)

	h := func(srv any, ss grpc.ServerStream) error {
		t.Fatal("handler should not be called when token missing")
		return nil
	}

	err := s.bearerTokenInterceptor(nil, &fakeServerStream{}, listInfo, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_NotBearer(t *testing.T) {
	s := newTestServer(nil)

	h := func(srv any, ss grpc.ServerStream) error {
		t.Fatal("handler should not be called")
		return nil
	}

	err := s.bearerTokenInterceptor(nil, &fakeServerStream{ctx: incoming("Basic Zm9vOmJhcg==")}, listInfo, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(nil)
	tok, err := auth.GenerateToken("c", []byte("other-key"), time.Now(), time.Minute)
	require.NoError(t, err)

	h := func(srv any, ss grpc.ServerStream) error {
		t.Fatal("handler should not be called")
		return nil
	}

	err = s.bearerTokenInterceptor(nil, &fakeServerStream{ctx: incoming("Bearer " + tok)}, listInfo, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s := newTestServer(nil)
	tok, err := auth.GenerateToken("c", []byte("jwt-key"), time.Now().Add(-time.Hour), time.Minute)
	require.NoError(t, err)

	err = s.bearerTokenInterceptor(nil, &fakeServerStream{ctx: incoming("Bearer " + tok)}, listInfo,
		func(any, grpc.ServerStream) error { return nil })
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ValidToken_PutsClientIDInContext(t *testing.T) {
	s := newTestServer(nil)
	tok, err := auth.GenerateToken("client-7", []byte("jwt-key"), time.Now(), time.Minute)
	require.NoError(t, err)

	called := false
	h := func(srv any, ss grpc.ServerStream) error {
		called = true
		assert.Equal(t, "client-7", ClientID(ss.Context()))
		return nil
	}

	err = s.bearerTokenInterceptor(nil, &fakeServerStream{ctx: incoming("Bearer " + tok)}, listInfo, h)
	require.NoError(t, err)
	assert.True(t, called)
}
