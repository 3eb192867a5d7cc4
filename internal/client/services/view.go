// Package services contains the application services of the gophstore client.
// They combine the remote client with the local cache and are what the CLI
// talks to.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/cursor"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// Lister is the part of the remote client that reads windows.
type Lister interface {
	List(ctx context.Context, prefix string, opts wire.ListOptions) (*cursor.ListCursor[wire.Item], error)
	ContinueList(ctx context.Context, token wire.ListToken) (*cursor.ListCursor[wire.Item], error)
	SyncList(ctx context.Context, token wire.ListToken) (*cursor.SyncCursor[wire.Item], error)
}

// ViewCache stores windows locally.
type ViewCache interface {
	Replace(ctx context.Context, prefix string, items []wire.Item, token wire.ListToken) error
	Apply(ctx context.Context, prefix string, events []cursor.SyncEvent[wire.Item], token wire.ListToken) error
	Items(ctx context.Context, prefix string) ([]wire.Item, error)
	Token(ctx context.Context, prefix string) (*wire.ListToken, error)
}

// RefreshResult describes what a refresh did.
type RefreshResult struct {
	// Synced is true when the window was brought up to date with a sync
	// rather than listed from scratch.
	Synced bool
	// Reset is true when the server could not diff and resent the window.
	Reset   bool
	Changes int
	Items   []wire.Item
}

type ViewService struct {
	remote Lister
	cache  ViewCache
	opts   wire.ListOptions
	logger logging.Logger
}

func NewViewService(remote Lister, cache ViewCache, opts wire.ListOptions, l logging.Logger) *ViewService {
	if l == nil {
		l = logging.Nop()
	}
	return &ViewService{remote: remote, cache: cache, opts: opts, logger: l}
}

// Refresh brings the cached window under prefix up to date. A cached window
// whose token can sync is synced; anything else is listed in full.
func (s *ViewService) Refresh(ctx context.Context, prefix string) (*RefreshResult, error) {
	token, err := s.cache.Token(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if token != nil && token.CanSync {
		res, err := s.sync(ctx, prefix, *token)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, common.ErrInvalidArgument) {
			return nil, err
		}
		// the server no longer understands the token
		s.logger.Warn(ctx, "sync token rejected, listing again", "prefix", prefix, "error", err)
	}

	return s.list(ctx, prefix)
}

// Items returns the cached window without contacting the server.
func (s *ViewService) Items(ctx context.Context, prefix string) ([]wire.Item, error) {
	return s.cache.Items(ctx, prefix)
}

func (s *ViewService) list(ctx context.Context, prefix string) (*RefreshResult, error) {
	c, err := s.remote.List(ctx, prefix, s.opts)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	var all []wire.Item
	pages := 0
	for {
		items, token, err := c.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		all = append(all, items...)
		pages++

		if !token.CanContinue {
			if err := s.cache.Replace(ctx, prefix, all, token); err != nil {
				return nil, err
			}
			s.logger.Debug(ctx, "window listed", "prefix", prefix, "items", len(all), "pages", pages)
			return &RefreshResult{Changes: len(all), Items: all}, nil
		}

		if c, err = s.remote.ContinueList(ctx, token); err != nil {
			return nil, fmt.Errorf("continue list %q: %w", prefix, err)
		}
	}
}

func (s *ViewService) sync(ctx context.Context, prefix string, token wire.ListToken) (*RefreshResult, error) {
	c, err := s.remote.SyncList(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("sync %q: %w", prefix, err)
	}

	events, next, err := c.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync %q: %w", prefix, err)
	}

	if err := s.cache.Apply(ctx, prefix, events, next); err != nil {
		return nil, err
	}

	res := &RefreshResult{Synced: true, Changes: len(events)}
	for _, ev := range events {
		if _, ok := ev.(cursor.Reset); ok {
			res.Reset = true
			res.Changes--
		}
	}

	if res.Items, err = s.cache.Items(ctx, prefix); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "window synced", "prefix", prefix, "changes", res.Changes, "reset", res.Reset)
	return res, nil
}
