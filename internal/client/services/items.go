package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/txn"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// ErrConflict is returned when the server declined to commit because the data
// read by the transaction changed in the meantime.
var ErrConflict = errors.New("transaction was not committed")

// Transactor runs a function inside a remote transaction.
type Transactor interface {
	Transact(ctx context.Context, fn txn.Handler) (*txn.CommitResult, error)
}

// ItemService performs single-shot reads and writes, each in its own
// transaction.
type ItemService struct {
	remote Transactor
}

func NewItemService(remote Transactor) *ItemService {
	return &ItemService{remote: remote}
}

// Get returns the items stored under keys. Missing keys are absent from the
// result.
func (s *ItemService) Get(ctx context.Context, keys ...string) ([]wire.Item, error) {
	var items []wire.Item
	_, err := s.remote.Transact(ctx, func(ctx context.Context, sess *txn.Session) error {
		var err error
		items, err = sess.Get(ctx, keys)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return items, nil
}

// Put stores items and returns them as stored, with server-assigned keys and
// versions filled in.
func (s *ItemService) Put(ctx context.Context, items ...wire.PutItem) ([]wire.Item, error) {
	res, err := s.remote.Transact(ctx, func(ctx context.Context, sess *txn.Session) error {
		_, err := sess.Put(ctx, items)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}
	if !res.Committed {
		return nil, fmt.Errorf("put: %w", ErrConflict)
	}
	return res.Items, nil
}

func (s *ItemService) Delete(ctx context.Context, keys ...string) error {
	res, err := s.remote.Transact(ctx, func(ctx context.Context, sess *txn.Session) error {
		return sess.Delete(ctx, keys)
	})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if !res.Committed {
		return fmt.Errorf("delete: %w", ErrConflict)
	}
	return nil
}
