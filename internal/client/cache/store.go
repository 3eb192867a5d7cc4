// Package cache keeps a local SQLite copy of list windows together with the
// token that can sync them.
//
// A window is identified by its prefix. It is filled by Replace after a full
// list and kept current by Apply with the events of a sync.
package cache

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophstore/internal/client/cursor"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens and migrates the database at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := OpenDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Replace makes items the whole content of the window and stores token.
func (s *Store) Replace(ctx context.Context, prefix string, items []wire.Item, token wire.ListToken) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		views, rows := viewRepository{db: tx}, itemRepository{db: tx}

		if err := views.setToken(ctx, prefix, token); err != nil {
			return err
		}
		if err := rows.clear(ctx, prefix); err != nil {
			return err
		}
		for _, item := range items {
			if err := rows.upsert(ctx, prefix, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// Apply applies sync events in order and stores token, all or nothing.
func (s *Store) Apply(ctx context.Context, prefix string, events []cursor.SyncEvent[wire.Item], token wire.ListToken) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		views, rows := viewRepository{db: tx}, itemRepository{db: tx}

		if err := views.setToken(ctx, prefix, token); err != nil {
			return err
		}
		for _, ev := range events {
			var err error
			switch e := ev.(type) {
			case cursor.Reset:
				err = rows.clear(ctx, prefix)
			case cursor.Changed[wire.Item]:
				err = rows.upsert(ctx, prefix, e.Value)
			case cursor.Deleted:
				err = rows.delete(ctx, prefix, e.Key)
			case cursor.OutsideWindow:
				err = rows.delete(ctx, prefix, e.Key)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Items returns the cached items of the window ordered by key.
func (s *Store) Items(ctx context.Context, prefix string) ([]wire.Item, error) {
	return itemRepository{db: s.db}.list(ctx, prefix)
}

// Token returns the token of the window, or nil when it is not cached.
func (s *Store) Token(ctx context.Context, prefix string) (*wire.ListToken, error) {
	return viewRepository{db: s.db}.token(ctx, prefix)
}

// Forget drops the window.
func (s *Store) Forget(ctx context.Context, prefix string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return viewRepository{db: tx}.delete(ctx, prefix)
	})
}
