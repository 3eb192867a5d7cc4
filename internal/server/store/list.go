package store

import (
	"encoding/json"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// listState is the content of a list token. Version is the store version
// when the first page was read; syncing from the token reports every change
// after it.
type listState struct {
	Prefix  string `json:"p,omitempty"`
	Type    string `json:"t,omitempty"`
	Reverse bool   `json:"r,omitempty"`
	Limit   int    `json:"l,omitempty"`
	After   string `json:"a,omitempty"`
	Version int64  `json:"v"`
}

func (st listState) token(canContinue bool) wire.ListToken {
	raw, _ := json.Marshal(st)
	return wire.ListToken{Raw: raw, CanContinue: canContinue, CanSync: true}
}

func parseToken(raw []byte) (listState, error) {
	var st listState
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, common.WrapError(common.CodeInvalidArgument, err, "malformed list token")
	}
	return st, nil
}

// Page is one page of a list together with the token that follows it.
type Page struct {
	Items []wire.Item
	Token wire.ListToken
}

// List reads the first page of the window under prefix.
func (s *Store) List(prefix string, opts wire.ListOptions) Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.page(listState{
		Prefix:  prefix,
		Type:    opts.Type,
		Reverse: opts.Reverse,
		Limit:   opts.Limit,
		Version: s.version,
	})
}

// Continue reads the page after the one token was issued with.
func (s *Store) Continue(raw []byte) (Page, error) {
	st, err := parseToken(raw)
	if err != nil {
		return Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page(st), nil
}

// page is called with s.mu held.
func (s *Store) page(st listState) Page {
	limit := s.pageSize
	if st.Limit > 0 && st.Limit < limit {
		limit = st.Limit
	}

	keys := s.window(st.Prefix, st.Type, st.Reverse)
	start := 0
	if st.After != "" {
		for start < len(keys) && !past(keys[start], st.After, st.Reverse) {
			start++
		}
	}

	end := min(start+limit, len(keys))
	items := make([]wire.Item, 0, end-start)
	for _, key := range keys[start:end] {
		items = append(items, s.items[key])
	}

	if end > start {
		st.After = keys[end-1]
	}
	return Page{Items: items, Token: st.token(end < len(keys))}
}

// past reports whether key comes after the last key of the previous page.
func past(key, after string, reverse bool) bool {
	if reverse {
		return key < after
	}
	return key > after
}
