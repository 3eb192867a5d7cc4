package client

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/auth"
	"github.com/dmitrijs2005/gophstore/internal/client/cursor"
	"github.com/dmitrijs2005/gophstore/internal/client/txn"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	exchangeTimeout = 12 * time.Second
	rejectedRefresh = 10 * time.Second
)

type Option func(*GRPCClient)

func WithLogger(l logging.Logger) Option {
	return func(c *GRPCClient) {
		c.logger = l
	}
}

// WithDialOptions appends options to the ones New dials with, for example a
// bufconn dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) {
		c.dialOpts = append(c.dialOpts, opts...)
	}
}

// WithSecret makes the client authenticate data calls with tokens exchanged
// for secret.
func WithSecret(secret string, opts ...auth.Option) Option {
	return func(c *GRPCClient) {
		c.secret = secret
		c.authOpts = opts
	}
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	logger      logging.Logger
	dialOpts    []grpc.DialOption

	secret   string
	authOpts []auth.Option
	tokens   *auth.TokenManager
	stop     context.CancelFunc
}

// New connects to endpointURL. The connection is established lazily on the
// first call.
func New(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("module", "client")

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStreamInterceptor(c.rejectedTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	if c.secret != "" {
		ctx, stop := context.WithCancel(context.Background())
		c.stop = stop
		c.tokens = auth.NewTokenManager(ctx, c, c.secret, append([]auth.Option{auth.WithLogger(c.logger)}, c.authOpts...)...)
	}
	return c, nil
}

// Tokens returns the token manager, or nil for an unauthenticated client.
func (c *GRPCClient) Tokens() *auth.TokenManager {
	return c.tokens
}

func (c *GRPCClient) Close() error {
	if c.stop != nil {
		c.stop()
	}
	return c.conn.Close()
}

// ExchangeToken trades secret for an access token. It never carries a token
// itself.
func (c *GRPCClient) ExchangeToken(ctx context.Context, secret string) (*wire.TokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	var resp wire.TokenResponse
	err := c.conn.Invoke(ctx, wire.MethodExchangeToken, &wire.TokenRequest{Secret: secret}, &resp, wire.CallOption())
	if err != nil {
		return nil, mapError(err)
	}
	return &resp, nil
}

// OpenStream opens a Transact stream. It makes the client a txn.Opener.
func (c *GRPCClient) OpenStream(ctx context.Context) (txn.Stream, error) {
	cs, err := c.conn.NewStream(ctx, &wire.TransactStreamDesc, wire.MethodTransact, c.callOptions()...)
	if err != nil {
		return nil, mapError(err)
	}
	return &txnStream{cs: cs}, nil
}

// Transact runs fn in a new transaction; see txn.Run.
func (c *GRPCClient) Transact(ctx context.Context, fn txn.Handler) (*txn.CommitResult, error) {
	return txn.Run(ctx, c, fn, txn.WithLogger(c.logger))
}

// List reads the items under prefix outside of any transaction. The stream
// lives as long as ctx.
func (c *GRPCClient) List(ctx context.Context, prefix string, opts wire.ListOptions) (*cursor.ListCursor[wire.Item], error) {
	return c.list(ctx, &wire.ListRequest{Prefix: prefix, Options: opts})
}

// ContinueList reads the next page of a list.
func (c *GRPCClient) ContinueList(ctx context.Context, token wire.ListToken) (*cursor.ListCursor[wire.Item], error) {
	if !token.CanContinue {
		return nil, common.NewError(common.CodeInvalidArgument, "list token cannot continue")
	}
	return c.list(ctx, &wire.ListRequest{Token: token.Raw})
}

// SyncList reports what changed in the window of token since it was issued.
func (c *GRPCClient) SyncList(ctx context.Context, token wire.ListToken) (*cursor.SyncCursor[wire.Item], error) {
	if !token.CanSync {
		return nil, common.NewError(common.CodeInvalidArgument, "list token cannot sync")
	}

	cs, err := c.serverStream(ctx, &wire.SyncStreamDesc, wire.MethodSync, &wire.SyncRequest{Token: token.Raw})
	if err != nil {
		return nil, err
	}

	src := cursor.SyncSourceFunc(func(context.Context) (wire.SyncMessage, error) {
		var env wire.SyncEnvelope
		if err := cs.RecvMsg(&env); err != nil {
			return nil, recvError(err)
		}
		return env.Message, nil
	})
	return cursor.NewSyncCursor[wire.Item](src, cursor.Raw), nil
}

func (c *GRPCClient) list(ctx context.Context, req *wire.ListRequest) (*cursor.ListCursor[wire.Item], error) {
	cs, err := c.serverStream(ctx, &wire.ListStreamDesc, wire.MethodList, req)
	if err != nil {
		return nil, err
	}

	src := cursor.ListSourceFunc(func(context.Context) (wire.Result, error) {
		var resp wire.Response
		if err := cs.RecvMsg(&resp); err != nil {
			return nil, recvError(err)
		}
		return resp.Result, nil
	})
	return cursor.NewListCursor[wire.Item](src, cursor.Raw), nil
}

func (c *GRPCClient) serverStream(ctx context.Context, desc *grpc.StreamDesc, method string, req any) (grpc.ClientStream, error) {
	cs, err := c.conn.NewStream(ctx, desc, method, c.callOptions()...)
	if err != nil {
		return nil, mapError(err)
	}
	if err := cs.SendMsg(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, mapError(err)
	}
	if err := cs.CloseSend(); err != nil {
		return nil, mapError(err)
	}
	return cs, nil
}

func (c *GRPCClient) callOptions() []grpc.CallOption {
	opts := []grpc.CallOption{wire.CallOption()}
	if c.tokens != nil {
		opts = append(opts, grpc.PerRPCCredentials(c.tokens))
	}
	return opts
}

// rejectedTokenInterceptor watches data streams for Unauthenticated and
// forces a token refresh when the server turns the current token down.
func (c *GRPCClient) rejectedTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {

	cs, err := streamer(ctx, desc, cc, method, opts...)
	if err != nil {
		c.onStreamError(ctx, method, err)
		return nil, err
	}
	return &watchedStream{ClientStream: cs, onError: func(err error) {
		c.onStreamError(ctx, method, err)
	}}, nil
}

func (c *GRPCClient) onStreamError(ctx context.Context, method string, err error) {
	if c.tokens == nil || status.Code(err) != codes.Unauthenticated {
		return
	}

	c.logger.Info(ctx, "token rejected, refreshing", "method", method)

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rejectedRefresh)
	defer cancel()
	if _, err := c.tokens.Refresh(rctx); err != nil {
		c.logger.Warn(ctx, "token refresh failed", "error", err)
	}
}

type watchedStream struct {
	grpc.ClientStream
	onError func(error)
}

func (s *watchedStream) RecvMsg(m any) error {
	err := s.ClientStream.RecvMsg(m)
	if err != nil && !errors.Is(err, io.EOF) {
		s.onError(err)
	}
	return err
}

// txnStream adapts a Transact client stream to txn.Stream.
type txnStream struct {
	cs grpc.ClientStream
}

func (s *txnStream) Send(r *wire.Request) error {
	if err := s.cs.SendMsg(r); err != nil {
		// io.EOF means the server ended the call; its status comes with Recv
		if errors.Is(err, io.EOF) {
			return err
		}
		return mapError(err)
	}
	return nil
}

func (s *txnStream) Recv() (*wire.Response, error) {
	var resp wire.Response
	if err := s.cs.RecvMsg(&resp); err != nil {
		return nil, recvError(err)
	}
	return &resp, nil
}

func (s *txnStream) CloseSend() error {
	return s.cs.CloseSend()
}

func recvError(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return mapError(err)
}

// mapError converts a gRPC status into a *common.Error that keeps the status
// as its cause.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var typed *common.Error
	if errors.As(err, &typed) {
		return err
	}

	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return common.WrapError(common.CodeUnauthorized, err, "%s", st.Message())
	case codes.PermissionDenied:
		return common.WrapError(common.CodePermissionDenied, err, "%s", st.Message())
	case codes.NotFound:
		return common.WrapError(common.CodeNotFound, err, "%s", st.Message())
	case codes.InvalidArgument:
		return common.WrapError(common.CodeInvalidArgument, err, "%s", st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.WrapError(common.CodeUnavailable, err, "%s", st.Message())
	case codes.Canceled:
		return common.WrapError(common.CodeCanceled, err, "%s", st.Message())
	default:
		return common.WrapError(common.CodeTransport, err, "rpc error")
	}
}
