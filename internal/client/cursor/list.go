package cursor

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// ListSource yields the messages of one list stream. It returns io.EOF when
// the underlying stream ends.
type ListSource interface {
	Recv(ctx context.Context) (wire.Result, error)
}

// ListSourceFunc adapts a function to ListSource.
type ListSourceFunc func(ctx context.Context) (wire.Result, error)

func (f ListSourceFunc) Recv(ctx context.Context) (wire.Result, error) {
	return f(ctx)
}

// Raw is the identity decoder for cursors over untyped items.
func Raw(item wire.Item) (wire.Item, error) {
	return item, nil
}

type ListCursor[T any] struct {
	src    ListSource
	decode func(wire.Item) (T, error)

	pending []wire.Item
	value   T
	token   *wire.ListToken
	err     error
	done    bool
}

func NewListCursor[T any](src ListSource, decode func(wire.Item) (T, error)) *ListCursor[T] {
	return &ListCursor[T]{src: src, decode: decode}
}

// Next advances to the next item. It returns false once the stream is
// finished or has failed; Err tells which.
func (c *ListCursor[T]) Next(ctx context.Context) bool {
	for !c.done {
		if len(c.pending) > 0 {
			item := c.pending[0]
			c.pending = c.pending[1:]

			v, err := c.decode(item)
			if err != nil {
				c.fail(err)
				return false
			}
			c.value = v
			return true
		}

		res, err := c.src.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = common.NewError(common.CodeEndOfStream, "list stream ended without finished message")
			}
			c.fail(err)
			return false
		}

		switch r := res.(type) {
		case wire.ListResult:
			c.pending = r.Items
		case wire.Finished:
			token := wire.ListToken{}
			if r.Token != nil {
				token = *r.Token
			}
			c.token = &token
			c.done = true
		default:
			c.fail(common.NewError(common.CodeUnexpectedType, "list stream: unexpected %s", res.Kind()))
		}
	}
	return false
}

func (c *ListCursor[T]) fail(err error) {
	c.err = err
	c.done = true
	c.pending = nil
}

// Value returns the item produced by the last successful Next.
func (c *ListCursor[T]) Value() T {
	return c.value
}

// Err returns the error that stopped the cursor, if any.
func (c *ListCursor[T]) Err() error {
	return c.err
}

// Token returns the continuation token, or nil until the stream finished.
func (c *ListCursor[T]) Token() *wire.ListToken {
	return c.token
}

// Collect drains the cursor.
func (c *ListCursor[T]) Collect(ctx context.Context) ([]T, wire.ListToken, error) {
	var out []T
	for c.Next(ctx) {
		out = append(out, c.Value())
	}
	if c.err != nil {
		return out, wire.ListToken{}, c.err
	}
	return out, *c.token, nil
}
