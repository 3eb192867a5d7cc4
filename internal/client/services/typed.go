package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/codec"
	"github.com/dmitrijs2005/gophstore/internal/client/txn"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// GetAs reads keys that all hold items of c's type. Missing keys are absent
// from the result; an item of another type fails the call.
func GetAs[T any](ctx context.Context, s *ItemService, c codec.Codec[T], keys ...string) (map[string]T, error) {
	var out map[string]T
	_, err := s.remote.Transact(ctx, func(ctx context.Context, sess *txn.Session) error {
		var err error
		out, err = txn.GetAs(ctx, sess, c, keys...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return out, nil
}

// PutAs stores entries encoded with c and returns the stored items in entry
// order.
func PutAs[T any](ctx context.Context, s *ItemService, c codec.Codec[T], entries ...codec.Entry[T]) ([]wire.Item, error) {
	var keys []string
	res, err := s.remote.Transact(ctx, func(ctx context.Context, sess *txn.Session) error {
		var err error
		keys, err = txn.PutAs(ctx, sess, c, entries...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}
	if !res.Committed {
		return nil, fmt.Errorf("put: %w", ErrConflict)
	}

	byKey := make(map[string]wire.Item, len(res.Items))
	for _, it := range res.Items {
		byKey[it.Key] = it
	}
	out := make([]wire.Item, 0, len(keys))
	for _, k := range keys {
		if it, ok := byKey[k]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// ListAs reads every item of c's type under prefix, following continuation
// tokens inside a single transaction so the pages form one snapshot.
func ListAs[T any](ctx context.Context, s *ItemService, c codec.Codec[T], prefix string, opts wire.ListOptions) ([]codec.Entry[T], error) {
	var out []codec.Entry[T]
	_, err := s.remote.Transact(ctx, func(ctx context.Context, sess *txn.Session) error {
		out = nil
		cur, err := txn.BeginListAs(ctx, sess, c, prefix, opts)
		for err == nil {
			var (
				page  []codec.Entry[T]
				token wire.ListToken
			)
			page, token, err = cur.Collect(ctx)
			out = append(out, page...)
			if err != nil || !token.CanContinue {
				break
			}
			cur, err = txn.ContinueListAs(ctx, sess, c, token)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}
