package grpc

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/store"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"google.golang.org/grpc/metadata"
)

// fakeServerStream replays scripted requests and records what the handler
// sends.
type fakeServerStream struct {
	ctx  context.Context
	in   []any
	sent []any
}

func (f *fakeServerStream) SetHeader(metadata.MD) error  { return nil }
func (f *fakeServerStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeServerStream) SetTrailer(metadata.MD)       {}

func (f *fakeServerStream) Context() context.Context {
	if f.ctx == nil {
		return context.Background()
	}
	return f.ctx
}

func (f *fakeServerStream) SendMsg(m any) error {
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeServerStream) RecvMsg(m any) error {
	if len(f.in) == 0 {
		return io.EOF
	}
	next := f.in[0]
	f.in = f.in[1:]

	switch dst := m.(type) {
	case *wire.Request:
		*dst = *next.(*wire.Request)
	case *wire.ListRequest:
		*dst = *next.(*wire.ListRequest)
	case *wire.SyncRequest:
		*dst = *next.(*wire.SyncRequest)
	}
	return nil
}

func (f *fakeServerStream) responses() []*wire.Response {
	out := make([]*wire.Response, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.(*wire.Response))
	}
	return out
}

func requests(cmds ...wire.Command) []any {
	out := make([]any, 0, len(cmds))
	for i, c := range cmds {
		out = append(out, &wire.Request{SequenceID: uint64(i + 1), Command: c})
	}
	return out
}

func newTestServer(st *store.Store) *GRPCServer {
	if st == nil {
		st = store.New()
	}
	s, _ := NewGRPCServer("127.0.0.1:0", logging.Nop(), st, "jwt-key", "client-secret", time.Minute)
	return s
}
