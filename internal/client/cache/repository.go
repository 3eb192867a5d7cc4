package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// viewRepository stores one row per cached window.
type viewRepository struct {
	db dbx.DBTX
}

func (r viewRepository) token(ctx context.Context, prefix string) (*wire.ListToken, error) {
	var t wire.ListToken
	err := r.db.QueryRowContext(ctx,
		`SELECT token, can_continue, can_sync FROM views WHERE prefix = ?`, prefix).
		Scan(&t.Raw, &t.CanContinue, &t.CanSync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view[%s]: %w", prefix, err)
	}
	return &t, nil
}

func (r viewRepository) setToken(ctx context.Context, prefix string, t wire.ListToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO views (prefix, token, can_continue, can_sync, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(prefix) DO UPDATE SET
			token = excluded.token,
			can_continue = excluded.can_continue,
			can_sync = excluded.can_sync,
			updated_at = excluded.updated_at
	`, prefix, t.Raw, t.CanContinue, t.CanSync)
	if err != nil {
		return fmt.Errorf("failed to set view[%s]: %w", prefix, err)
	}
	return nil
}

func (r viewRepository) delete(ctx context.Context, prefix string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE prefix = ?`, prefix); err != nil {
		return fmt.Errorf("failed to clear items[%s]: %w", prefix, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM views WHERE prefix = ?`, prefix); err != nil {
		return fmt.Errorf("failed to delete view[%s]: %w", prefix, err)
	}
	return nil
}

// itemRepository stores the items of every cached window.
type itemRepository struct {
	db dbx.DBTX
}

func (r itemRepository) upsert(ctx context.Context, prefix string, item wire.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (prefix, key, type, data, version) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(prefix, key) DO UPDATE SET
			type = excluded.type,
			data = excluded.data,
			version = excluded.version
	`, prefix, item.Key, item.Type, item.Data, item.Version)
	if err != nil {
		return fmt.Errorf("failed to upsert item[%s]: %w", item.Key, err)
	}
	return nil
}

func (r itemRepository) delete(ctx context.Context, prefix, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE prefix = ? AND key = ?`, prefix, key)
	if err != nil {
		return fmt.Errorf("failed to delete item[%s]: %w", key, err)
	}
	return nil
}

func (r itemRepository) clear(ctx context.Context, prefix string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE prefix = ?`, prefix)
	if err != nil {
		return fmt.Errorf("failed to clear items[%s]: %w", prefix, err)
	}
	return nil
}

func (r itemRepository) list(ctx context.Context, prefix string) ([]wire.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, type, data, version FROM items WHERE prefix = ? ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list items[%s]: %w", prefix, err)
	}
	defer rows.Close()

	var result []wire.Item
	for rows.Next() {
		var item wire.Item
		if err := rows.Scan(&item.Key, &item.Type, &item.Data, &item.Version); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return result, nil
}
