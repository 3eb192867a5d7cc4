package store

import (
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// Txn stages writes and remembers the version of every key it read. Commit
// fails when any of those keys changed in the meantime.
type Txn struct {
	store *Store
	reads map[string]int64

	order []string
	puts  map[string]wire.PutItem
	dels  map[string]bool
}

// Get returns the items under keys as this transaction sees them.
func (t *Txn) Get(keys []string) []wire.Item {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	out := make([]wire.Item, 0, len(keys))
	for _, key := range keys {
		if p, ok := t.puts[key]; ok {
			out = append(out, wire.Item{Key: p.Key, Type: p.Type, Data: p.Data})
			continue
		}
		if t.dels[key] {
			continue
		}

		item, ok := t.store.items[key]
		if _, seen := t.reads[key]; !seen {
			t.reads[key] = item.Version
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}

// Put stages items and returns their keys. A key ending in "/" gets a fresh
// identifier appended.
func (t *Txn) Put(items []wire.PutItem) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		if it.Key == "" || strings.HasSuffix(it.Key, "/") {
			it.Key += t.store.newID()
		}
		if _, staged := t.puts[it.Key]; !staged {
			t.order = append(t.order, it.Key)
		}
		t.puts[it.Key] = it
		delete(t.dels, it.Key)
		keys = append(keys, it.Key)
	}
	return keys
}

func (t *Txn) Delete(keys []string) {
	for _, key := range keys {
		delete(t.puts, key)
		t.dels[key] = true
	}
}

// Commit applies the staged writes atomically and returns the stored form
// of every put. It returns false, and applies nothing, on a read conflict.
func (t *Txn) Commit() (bool, []wire.Item) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range t.reads {
		if s.items[key].Version != version {
			return false, nil
		}
	}

	stored := make([]wire.Item, 0, len(t.puts))
	applied := make(map[string]bool, len(t.puts))
	for _, key := range t.order {
		p, ok := t.puts[key]
		if !ok || applied[key] {
			continue
		}
		applied[key] = true
		s.version++
		item := wire.Item{Key: p.Key, Type: p.Type, Data: p.Data, Version: s.version}
		s.items[key] = item
		s.record(key)
		stored = append(stored, item)
	}
	for key := range t.dels {
		if _, ok := s.items[key]; !ok {
			continue
		}
		s.version++
		delete(s.items, key)
		s.record(key)
	}
	return true, stored
}
