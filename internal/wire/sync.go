package wire

// SyncMessage is one message of a sync stream: an optional SyncReset, any
// number of SyncBatch, then exactly one SyncFinished.
type SyncMessage interface {
	syncKind() string
}

// SyncReset tells the client to discard its cached view; a fresh population
// of the window follows.
type SyncReset struct{}

type SyncBatch struct {
	Entries SyncEntries `json:"entries"`
}

type SyncFinished struct {
	Token ListToken `json:"token"`
}

func (SyncReset) syncKind() string    { return "reset" }
func (SyncBatch) syncKind() string    { return "batch" }
func (SyncFinished) syncKind() string { return "finished" }

// SyncEntry is one change inside a SyncBatch.
type SyncEntry interface {
	entryKind() string
}

// Changed carries the full item that was added or updated.
type Changed struct {
	Item Item `json:"item"`
}

// Deleted carries the key of a removed item.
type Deleted struct {
	Key string `json:"key"`
}

// UpdatedOutsideWindow reports an item that changed and no longer belongs
// to the tracked window.
type UpdatedOutsideWindow struct {
	Key string `json:"key"`
}

func (Changed) entryKind() string              { return "changed" }
func (Deleted) entryKind() string              { return "deleted" }
func (UpdatedOutsideWindow) entryKind() string { return "outsideWindow" }

// SyncEntries is a list of entries with a discriminated JSON encoding.
type SyncEntries []SyncEntry
