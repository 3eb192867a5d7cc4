// Package store is the in-memory item store behind the reference server.
//
// Every committed write bumps a global version. Recent changes are kept in
// a bounded changelog so that list windows can be synchronised; a window
// whose token predates the retained changelog is answered with a reset.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/wire"
	"github.com/google/uuid"
)

const (
	DefaultPageSize          = 100
	DefaultChangelogCapacity = 1024
)

type change struct {
	version int64
	key     string
}

type Store struct {
	mu       sync.RWMutex
	items    map[string]wire.Item
	version  int64
	log      []change
	logCap   int
	pageSize int
	newID    func() string
}

type Option func(*Store)

// WithPageSize caps the number of items in one list page.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithChangelogCapacity bounds the number of retained changes.
func WithChangelogCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.logCap = n
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		items:    map[string]wire.Item{},
		logCap:   DefaultChangelogCapacity,
		pageSize: DefaultPageSize,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version returns the version of the last commit.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Begin starts a transaction. Nothing is locked until Commit.
func (s *Store) Begin() *Txn {
	return &Txn{
		store: s,
		reads: map[string]int64{},
		puts:  map[string]wire.PutItem{},
		dels:  map[string]bool{},
	}
}

// record appends a change, dropping the oldest one when full. Called with
// s.mu held for writing.
func (s *Store) record(key string) {
	s.log = append(s.log, change{version: s.version, key: key})
	if len(s.log) > s.logCap {
		s.log = s.log[len(s.log)-s.logCap:]
	}
}

// retainedSince reports whether every change after version is still in the
// changelog. Called with s.mu held.
func (s *Store) retainedSince(version int64) bool {
	if version >= s.version {
		return true
	}
	if len(s.log) == 0 {
		return false
	}
	return s.log[0].version <= version+1
}

// window returns the keys matching a list window, in list order. Called
// with s.mu held.
func (s *Store) window(prefix, typ string, reverse bool) []string {
	keys := make([]string, 0)
	for key, item := range s.items {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if typ != "" && item.Type != typ {
			continue
		}
		keys = append(keys, key)
	}
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	} else {
		sort.Strings(keys)
	}
	return keys
}
