package wire

import "time"

// Item is a stored item as returned by the server.
type Item struct {
	Key     string `json:"key"`
	Type    string `json:"type,omitempty"`
	Data    []byte `json:"data,omitempty"`
	Version int64  `json:"version,omitempty"`
}

// PutItem is an item to be written. A Key ending in "/" asks the server to
// assign an identifier and append it to the key.
type PutItem struct {
	Key  string `json:"key"`
	Type string `json:"type,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// ListOptions shape the window of a list.
type ListOptions struct {
	Limit   int    `json:"limit,omitempty"`
	Reverse bool   `json:"reverse,omitempty"`
	Type    string `json:"type,omitempty"`
}

// ListToken is the continuation cursor issued by a terminal list or sync
// message. It is immutable; pass it, or its Raw bytes, back verbatim.
type ListToken struct {
	Raw         []byte `json:"raw,omitempty"`
	CanContinue bool   `json:"canContinue,omitempty"`
	CanSync     bool   `json:"canSync,omitempty"`
}

// TokenRequest exchanges a long-lived secret for a short-lived token.
type TokenRequest struct {
	Secret string `json:"secret"`
}

// TokenResponse carries the issued token and its lifetime. TTLSeconds may be
// zero, in which case the token's own expiry claim applies.
type TokenResponse struct {
	Token      string `json:"token"`
	TTLSeconds int64  `json:"ttlSeconds,omitempty"`
}

// TTL returns the declared lifetime.
func (r *TokenResponse) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// ListRequest opens a server-streaming list outside a transaction. A non-empty
// Token continues a previous list and Prefix/Options are ignored.
type ListRequest struct {
	Prefix  string      `json:"prefix,omitempty"`
	Options ListOptions `json:"options,omitempty"`
	Token   []byte      `json:"token,omitempty"`
}

// SyncRequest asks for the changes to the window described by Token since
// Token was issued.
type SyncRequest struct {
	Token []byte `json:"token"`
}
