package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(reqs []*wire.Request) []wire.CommandKind {
	out := make([]wire.CommandKind, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Command.Kind())
	}
	return out
}

func TestRun_CommitsOnSuccess(t *testing.T) {
	f := newFakeStream()
	f.serve(func(r *wire.Request) []wire.Result {
		return []wire.Result{wire.PutAck{Keys: []string{"a"}}}
	})

	res, err := Run(testCtx(t), &fakeOpener{stream: f}, func(ctx context.Context, s *Session) error {
		_, err := s.Put(ctx, []wire.PutItem{{Key: "a", Type: "note"}})
		return err
	})
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t,
		[]wire.CommandKind{wire.KindBegin, wire.KindPut, wire.KindCommit},
		kinds(f.history()))
}

func TestRun_AbortsOnHandlerError(t *testing.T) {
	f := newFakeStream()
	f.serve(nil)
	boom := errors.New("boom")

	res, err := Run(testCtx(t), &fakeOpener{stream: f}, func(ctx context.Context, s *Session) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.Equal(t, []wire.CommandKind{wire.KindBegin, wire.KindAbort}, kinds(f.history()))
}

func TestRun_AbortFailureIsDropped(t *testing.T) {
	f := newFakeStream()
	go func() {
		for r := range f.sent {
			if r.Command.Kind() == wire.KindAbort {
				// the server goes away without answering
				f.end()
				return
			}
		}
	}()
	boom := errors.New("boom")

	_, err := Run(testCtx(t), &fakeOpener{stream: f}, func(ctx context.Context, s *Session) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrEndOfStream)
}

func TestRun_NoAbortAfterProtocolError(t *testing.T) {
	f := newFakeStream()
	go func() {
		for r := range f.sent {
			if r.Command.Kind() == wire.KindGet {
				f.reply(r.SequenceID+10, wire.GetResult{})
			}
		}
	}()

	_, err := Run(testCtx(t), &fakeOpener{stream: f}, func(ctx context.Context, s *Session) error {
		_, err := s.Get(ctx, []string{"a"})
		return err
	})
	require.ErrorIs(t, err, common.ErrUnexpectedMessageID)
	assert.Equal(t, []wire.CommandKind{wire.KindBegin, wire.KindGet}, kinds(f.history()))
}

func TestRun_AbortsWhenCommitIsRefused(t *testing.T) {
	f := newFakeStream()
	// list requests are never answered
	f.serve(nil)

	_, err := Run(testCtx(t), &fakeOpener{stream: f}, func(ctx context.Context, s *Session) error {
		_, err := s.BeginList(ctx, "n/", wire.ListOptions{})
		return err
	})
	require.ErrorIs(t, err, common.ErrInflightRequests)
	assert.Equal(t,
		[]wire.CommandKind{wire.KindBegin, wire.KindBeginList, wire.KindAbort},
		kinds(f.history()))
}

func TestRun_AbortsAndRepanics(t *testing.T) {
	f := newFakeStream()
	f.serve(nil)

	assert.PanicsWithValue(t, "handler bug", func() {
		_, _ = Run(testCtx(t), &fakeOpener{stream: f}, func(ctx context.Context, s *Session) error {
			panic("handler bug")
		})
	})
	assert.Equal(t, []wire.CommandKind{wire.KindBegin, wire.KindAbort}, kinds(f.history()))
}

func TestRun_OpenError(t *testing.T) {
	dialErr := common.NewError(common.CodeUnavailable, "no route to store")
	_, err := Run(testCtx(t), openerFunc(func(context.Context) (Stream, error) {
		return nil, dialErr
	}), func(ctx context.Context, s *Session) error {
		t.Fatal("handler must not run")
		return nil
	})
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

type openerFunc func(ctx context.Context) (Stream, error)

func (f openerFunc) OpenStream(ctx context.Context) (Stream, error) {
	return f(ctx)
}
