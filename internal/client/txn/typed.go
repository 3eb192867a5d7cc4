package txn

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/client/codec"
	"github.com/dmitrijs2005/gophstore/internal/client/cursor"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// GetAs reads keys and decodes every returned item with c. An item of
// another type fails the whole call with a TypeMismatch error.
func GetAs[T any](ctx context.Context, s *Session, c codec.Codec[T], keys ...string) (map[string]T, error) {
	items, err := s.Get(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make(map[string]T, len(items))
	for _, item := range items {
		v, err := codec.Decode(c, item)
		if err != nil {
			return nil, err
		}
		out[item.Key] = v
	}
	return out, nil
}

// PutAs encodes entries with c and stages them. The returned keys are
// parallel to entries, so auto-id keys can be matched to their values.
func PutAs[T any](ctx context.Context, s *Session, c codec.Codec[T], entries ...codec.Entry[T]) ([]string, error) {
	items := make([]wire.PutItem, 0, len(entries))
	for _, e := range entries {
		item, err := codec.Encode(c, e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return s.Put(ctx, items)
}

// BeginListAs is BeginList with items decoded by c. Only items of c's type
// are listed unless opts names another.
func BeginListAs[T any](ctx context.Context, s *Session, c codec.Codec[T], prefix string, opts wire.ListOptions) (*cursor.ListCursor[codec.Entry[T]], error) {
	if opts.Type == "" {
		opts.Type = c.Type
	}
	r, err := s.send(ctx, wire.BeginList{Prefix: prefix, Options: opts})
	if err != nil {
		return nil, err
	}
	return cursor.NewListCursor(r, entryDecoder(c)), nil
}

// ContinueListAs is ContinueList with items decoded by c.
func ContinueListAs[T any](ctx context.Context, s *Session, c codec.Codec[T], token wire.ListToken) (*cursor.ListCursor[codec.Entry[T]], error) {
	r, err := s.send(ctx, wire.ContinueList{Token: token.Raw})
	if err != nil {
		return nil, err
	}
	return cursor.NewListCursor(r, entryDecoder(c)), nil
}

func entryDecoder[T any](c codec.Codec[T]) func(wire.Item) (codec.Entry[T], error) {
	return func(item wire.Item) (codec.Entry[T], error) {
		v, err := codec.Decode(c, item)
		if err != nil {
			return codec.Entry[T]{}, err
		}
		return codec.Entry[T]{Key: item.Key, Value: v}, nil
	}
}
