package txn

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// fakeStream is an in-memory duplex channel. Requests written by the
// session appear on sent; the test (or a responder) pushes responses with
// reply and ends the server side with end.
type fakeStream struct {
	sent    chan *wire.Request
	inbound chan *wire.Response

	mu       sync.Mutex
	requests []*wire.Request
	ended    bool
	halfDone bool
	sendErr  error
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		sent:    make(chan *wire.Request, 64),
		inbound: make(chan *wire.Response, 64),
	}
}

func (f *fakeStream) Send(r *wire.Request) error {
	f.mu.Lock()
	if f.sendErr != nil {
		f.mu.Unlock()
		return f.sendErr
	}
	f.requests = append(f.requests, r)
	f.mu.Unlock()
	f.sent <- r
	return nil
}

func (f *fakeStream) Recv() (*wire.Response, error) {
	r, ok := <-f.inbound
	if !ok {
		return nil, io.EOF
	}
	return r, nil
}

func (f *fakeStream) CloseSend() error {
	f.mu.Lock()
	f.halfDone = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStream) reply(seq uint64, res wire.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return
	}
	f.inbound <- &wire.Response{SequenceID: seq, Result: res}
}

func (f *fakeStream) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ended {
		f.ended = true
		close(f.inbound)
	}
}

func (f *fakeStream) history() []*wire.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*wire.Request(nil), f.requests...)
}

func (f *fakeStream) next(t *testing.T) *wire.Request {
	t.Helper()
	select {
	case r := <-f.sent:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a request")
		return nil
	}
}

func (f *fakeStream) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case r := <-f.sent:
		t.Fatalf("unexpected request %d (%s)", r.SequenceID, r.Command.Kind())
	case <-time.After(50 * time.Millisecond):
	}
}

// serve answers like a well-behaved server using handle for data commands.
// Commit and abort are answered with Finished and end the stream.
func (f *fakeStream) serve(handle func(r *wire.Request) []wire.Result) {
	go func() {
		for r := range f.sent {
			switch r.Command.(type) {
			case wire.Begin:
				continue
			case wire.Commit:
				f.reply(r.SequenceID, wire.Finished{Committed: true})
				f.end()
				return
			case wire.Abort:
				f.reply(r.SequenceID, wire.Finished{})
				f.end()
				return
			}
			if handle == nil {
				continue
			}
			for _, res := range handle(r) {
				f.reply(r.SequenceID, res)
			}
		}
	}()
}

// fakeOpener hands out its stream and ends it when the session context is
// cancelled, like a real call would.
type fakeOpener struct {
	stream *fakeStream
}

func (o *fakeOpener) OpenStream(ctx context.Context) (Stream, error) {
	go func() {
		<-ctx.Done()
		o.stream.end()
	}()
	return o.stream, nil
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
