package cursor

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// SyncSource yields the messages of one sync stream, io.EOF at its end.
type SyncSource interface {
	Recv(ctx context.Context) (wire.SyncMessage, error)
}

type SyncSourceFunc func(ctx context.Context) (wire.SyncMessage, error)

func (f SyncSourceFunc) Recv(ctx context.Context) (wire.SyncMessage, error) {
	return f(ctx)
}

// SyncEvent is one step of a sync: Reset, Changed[T], Deleted or OutsideWindow.
type SyncEvent[T any] interface {
	isSyncEvent()
}

// Reset invalidates everything cached for the window. Entries after it
// rebuild the view from scratch.
type Reset struct{}

type Changed[T any] struct {
	Key   string
	Value T
}

type Deleted struct {
	Key string
}

// OutsideWindow reports an item that changed but left the window. Treat it
// like Deleted unless finer semantics are needed.
type OutsideWindow struct {
	Key string
}

func (Reset) isSyncEvent()         {}
func (Changed[T]) isSyncEvent()    {}
func (Deleted) isSyncEvent()       {}
func (OutsideWindow) isSyncEvent() {}

type SyncCursor[T any] struct {
	src    SyncSource
	decode func(wire.Item) (T, error)

	pending []SyncEvent[T]
	value   SyncEvent[T]
	token   *wire.ListToken
	err     error
	done    bool

	// batchErr stops the cursor once the entries decoded ahead of it drain.
	batchErr error
}

func NewSyncCursor[T any](src SyncSource, decode func(wire.Item) (T, error)) *SyncCursor[T] {
	return &SyncCursor[T]{src: src, decode: decode}
}

// Next advances to the next event, in stream order.
func (c *SyncCursor[T]) Next(ctx context.Context) bool {
	for !c.done {
		if len(c.pending) > 0 {
			c.value = c.pending[0]
			c.pending = c.pending[1:]
			return true
		}
		if c.batchErr != nil {
			c.fail(c.batchErr)
			return false
		}

		msg, err := c.src.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = common.NewError(common.CodeStreamClosed, "sync stream ended without finished message")
			}
			c.fail(err)
			return false
		}

		switch m := msg.(type) {
		case wire.SyncReset:
			c.pending = append(c.pending, Reset{})
		case wire.SyncBatch:
			c.batchErr = c.enqueue(m.Entries)
		case wire.SyncFinished:
			token := m.Token
			c.token = &token
			c.done = true
		default:
			c.fail(common.NewError(common.CodeUnexpectedType, "sync stream: unexpected %T", msg))
		}
	}
	return false
}

func (c *SyncCursor[T]) enqueue(entries wire.SyncEntries) error {
	for _, entry := range entries {
		switch e := entry.(type) {
		case wire.Changed:
			v, err := c.decode(e.Item)
			if err != nil {
				return err
			}
			c.pending = append(c.pending, Changed[T]{Key: e.Item.Key, Value: v})
		case wire.Deleted:
			c.pending = append(c.pending, Deleted{Key: e.Key})
		case wire.UpdatedOutsideWindow:
			c.pending = append(c.pending, OutsideWindow{Key: e.Key})
		default:
			return common.NewError(common.CodeUnexpectedType, "sync stream: unexpected entry %T", entry)
		}
	}
	return nil
}

func (c *SyncCursor[T]) fail(err error) {
	c.err = err
	c.done = true
	c.pending = nil
}

func (c *SyncCursor[T]) Value() SyncEvent[T] {
	return c.value
}

func (c *SyncCursor[T]) Err() error {
	return c.err
}

func (c *SyncCursor[T]) Token() *wire.ListToken {
	return c.token
}

// Collect drains the cursor, keeping event order.
func (c *SyncCursor[T]) Collect(ctx context.Context) ([]SyncEvent[T], wire.ListToken, error) {
	var out []SyncEvent[T]
	for c.Next(ctx) {
		out = append(out, c.Value())
	}
	if c.err != nil {
		return out, wire.ListToken{}, c.err
	}
	return out, *c.token, nil
}
