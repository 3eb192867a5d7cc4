package cursor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays messages, then returns end (io.EOF when nil).
type scripted[M any] struct {
	msgs  []M
	end   error
	calls int
}

func (s *scripted[M]) Recv(ctx context.Context) (M, error) {
	s.calls++
	var zero M
	if len(s.msgs) == 0 {
		if s.end != nil {
			return zero, s.end
		}
		return zero, io.EOF
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, nil
}

func item(key string) wire.Item {
	return wire.Item{Key: key, Type: "note", Data: []byte(`"` + key + `"`)}
}

func keys(items []wire.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Key)
	}
	return out
}

func TestListCursor_YieldsItemsInOrderThenToken(t *testing.T) {
	src := &scripted[wire.Result]{msgs: []wire.Result{
		wire.ListResult{Items: []wire.Item{item("a"), item("b")}},
		wire.ListResult{},
		wire.ListResult{Items: []wire.Item{item("c")}},
		wire.Finished{Token: &wire.ListToken{Raw: []byte("t1"), CanContinue: true, CanSync: true}},
	}}

	c := NewListCursor(src, Raw)
	ctx := context.Background()

	require.Nil(t, c.Token())
	var got []string
	for c.Next(ctx) {
		got = append(got, c.Value().Key)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, []string{"a", "b", "c"}, got)
	require.NotNil(t, c.Token())
	assert.Equal(t, wire.ListToken{Raw: []byte("t1"), CanContinue: true, CanSync: true}, *c.Token())

	// exhausted cursors stay exhausted and do not touch the source again
	calls := src.calls
	assert.False(t, c.Next(ctx))
	assert.Equal(t, calls, src.calls)
}

func TestListCursor_CollectDecodesTyped(t *testing.T) {
	src := &scripted[wire.Result]{msgs: []wire.Result{
		wire.ListResult{Items: []wire.Item{item("x"), item("y")}},
		wire.Finished{},
	}}
	decode := func(it wire.Item) (string, error) {
		var s string
		err := json.Unmarshal(it.Data, &s)
		return s, err
	}

	values, token, err := NewListCursor(src, decode).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, values)
	assert.Equal(t, wire.ListToken{}, token, "finished without token yields an empty, non-continuable token")
}

func TestListCursor_EndWithoutFinished(t *testing.T) {
	src := &scripted[wire.Result]{msgs: []wire.Result{
		wire.ListResult{Items: []wire.Item{item("a")}},
	}}

	items, _, err := NewListCursor(src, Raw).Collect(context.Background())
	require.ErrorIs(t, err, common.ErrEndOfStream)
	assert.Equal(t, []string{"a"}, keys(items))
}

func TestListCursor_UnexpectedResultKind(t *testing.T) {
	src := &scripted[wire.Result]{msgs: []wire.Result{wire.PutAck{Keys: []string{"a"}}}}

	c := NewListCursor(src, Raw)
	assert.False(t, c.Next(context.Background()))
	assert.ErrorIs(t, c.Err(), common.ErrUnexpectedType)
	assert.Nil(t, c.Token())
}

func TestListCursor_DecodeErrorStops(t *testing.T) {
	boom := errors.New("boom")
	src := &scripted[wire.Result]{msgs: []wire.Result{
		wire.ListResult{Items: []wire.Item{item("a"), item("b")}},
		wire.Finished{},
	}}
	c := NewListCursor(src, func(wire.Item) (int, error) { return 0, boom })

	assert.False(t, c.Next(context.Background()))
	assert.ErrorIs(t, c.Err(), boom)
}

func TestListCursor_TransportErrorPassesThrough(t *testing.T) {
	cause := common.NewError(common.CodeUnavailable, "down")
	src := &scripted[wire.Result]{end: cause}

	_, _, err := NewListCursor(src, Raw).Collect(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestSyncCursor_ResetSurfacesFirst(t *testing.T) {
	src := &scripted[wire.SyncMessage]{msgs: []wire.SyncMessage{
		wire.SyncReset{},
		wire.SyncBatch{Entries: wire.SyncEntries{
			wire.Changed{Item: item("a")},
			wire.Changed{Item: item("b")},
		}},
		wire.SyncBatch{Entries: wire.SyncEntries{wire.Changed{Item: item("c")}}},
		wire.SyncFinished{Token: wire.ListToken{Raw: []byte("s2"), CanSync: true}},
	}}

	events, token, err := NewSyncCursor(src, Raw).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	_, isReset := events[0].(Reset)
	require.True(t, isReset, "reset must be the first event, got %T", events[0])
	for i, want := range []string{"a", "b", "c"} {
		ch, ok := events[i+1].(Changed[wire.Item])
		require.True(t, ok, "event %d: got %T", i+1, events[i+1])
		assert.Equal(t, want, ch.Key)
	}
	assert.True(t, token.CanSync)
	assert.Equal(t, []byte("s2"), token.Raw)
}

func TestSyncCursor_DeletedAndOutsideWindow(t *testing.T) {
	src := &scripted[wire.SyncMessage]{msgs: []wire.SyncMessage{
		wire.SyncBatch{Entries: wire.SyncEntries{
			wire.Deleted{Key: "a"},
			wire.UpdatedOutsideWindow{Key: "b"},
			wire.Changed{Item: item("c")},
		}},
		wire.SyncFinished{},
	}}

	c := NewSyncCursor(src, Raw)
	ctx := context.Background()

	require.True(t, c.Next(ctx))
	assert.Equal(t, Deleted{Key: "a"}, c.Value())
	require.True(t, c.Next(ctx))
	assert.Equal(t, OutsideWindow{Key: "b"}, c.Value())
	require.True(t, c.Next(ctx))
	assert.Equal(t, Changed[wire.Item]{Key: "c", Value: item("c")}, c.Value())
	require.False(t, c.Next(ctx))
	require.NoError(t, c.Err())
	require.NotNil(t, c.Token())
}

func TestSyncCursor_EndWithoutFinished(t *testing.T) {
	src := &scripted[wire.SyncMessage]{msgs: []wire.SyncMessage{wire.SyncReset{}}}

	events, _, err := NewSyncCursor(src, Raw).Collect(context.Background())
	require.ErrorIs(t, err, common.ErrStreamClosed)
	require.Len(t, events, 1)
}

func TestSyncCursor_DecodeErrorStops(t *testing.T) {
	bad := common.NewError(common.CodeUnmarshal, "bad item")
	src := &scripted[wire.SyncMessage]{msgs: []wire.SyncMessage{
		wire.SyncBatch{Entries: wire.SyncEntries{wire.Changed{Item: item("a")}}},
		wire.SyncFinished{},
	}}
	c := NewSyncCursor(src, func(wire.Item) (string, error) { return "", bad })

	assert.False(t, c.Next(context.Background()))
	assert.ErrorIs(t, c.Err(), common.ErrUnmarshal)
}

func TestSyncCursor_DecodeErrorAfterGoodEntries(t *testing.T) {
	src := &scripted[wire.SyncMessage]{msgs: []wire.SyncMessage{
		wire.SyncBatch{Entries: wire.SyncEntries{
			wire.Changed{Item: item("a")},
			wire.Deleted{Key: "b"},
			wire.Changed{Item: wire.Item{Key: "c", Type: "note", Data: []byte(`{`)}},
			wire.Changed{Item: item("d")},
		}},
		wire.SyncFinished{},
	}}
	decode := func(it wire.Item) (string, error) {
		var s string
		if err := json.Unmarshal(it.Data, &s); err != nil {
			return "", common.WrapError(common.CodeUnmarshal, err, "item %q", it.Key)
		}
		return s, nil
	}

	events, _, err := NewSyncCursor(src, decode).Collect(context.Background())
	require.ErrorIs(t, err, common.ErrUnmarshal)
	assert.Equal(t, []SyncEvent[string]{
		Changed[string]{Key: "a", Value: "a"},
		Deleted{Key: "b"},
	}, events)
	assert.Equal(t, 1, src.calls)
}
