package store

import (
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// Diff is the answer to a sync: either a reset followed by the whole window,
// or the entries that changed since the token.
type Diff struct {
	Reset   bool
	Entries []wire.SyncEntry
	Token   wire.ListToken
}

// Sync compares the window of a list token with the current state.
func (s *Store) Sync(raw []byte) (Diff, error) {
	st, err := parseToken(raw)
	if err != nil {
		return Diff{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if st.Version > s.version {
		return Diff{}, common.NewError(common.CodeInvalidArgument, "list token from the future: version %d", st.Version)
	}

	next := listState{Prefix: st.Prefix, Type: st.Type, Reverse: st.Reverse, Limit: st.Limit, Version: s.version}

	if !s.retainedSince(st.Version) {
		keys := s.window(st.Prefix, st.Type, st.Reverse)
		entries := make([]wire.SyncEntry, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, wire.Changed{Item: s.items[key]})
		}
		return Diff{Reset: true, Entries: entries, Token: next.token(false)}, nil
	}

	// latest change per key, in changelog order
	seen := map[string]bool{}
	var keys []string
	for i := len(s.log) - 1; i >= 0; i-- {
		c := s.log[i]
		if c.version <= st.Version {
			break
		}
		if seen[c.key] || !strings.HasPrefix(c.key, st.Prefix) {
			continue
		}
		seen[c.key] = true
		keys = append(keys, c.key)
	}

	entries := make([]wire.SyncEntry, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		item, ok := s.items[key]
		switch {
		case !ok:
			entries = append(entries, wire.Deleted{Key: key})
		case st.Type != "" && item.Type != st.Type:
			entries = append(entries, wire.UpdatedOutsideWindow{Key: key})
		default:
			entries = append(entries, wire.Changed{Item: item})
		}
	}
	return Diff{Entries: entries, Token: next.token(false)}, nil
}

// PageSize is the number of entries the server puts in one message.
func (s *Store) PageSize() int {
	return s.pageSize
}
