package wire

// ResultKind names a result variant.
type ResultKind string

const (
	KindGetResult  ResultKind = "getResult"
	KindPutAck     ResultKind = "putAck"
	KindListResult ResultKind = "listResult"
	KindFinished   ResultKind = "finished"
)

// Result is the payload of an inbound envelope.
type Result interface {
	Kind() ResultKind
	isResult()
}

// Response is an inbound envelope. SequenceID equals the SequenceID of the
// request it answers; every message of a list stream shares the id of the
// beginList/continueList that opened it.
type Response struct {
	SequenceID uint64
	Result     Result
}

type GetResult struct {
	Items []Item `json:"items"`
}

// PutAck lists the final key of every put item, in request order. Keys the
// server assigned appear here; full items only come with the commit result.
type PutAck struct {
	Keys []string `json:"keys"`
}

type ListResult struct {
	Items []Item `json:"items"`
}

// Finished terminates a list stream (Token set) or answers commit/abort
// (Committed and Items set).
type Finished struct {
	Committed bool       `json:"committed,omitempty"`
	Items     []Item     `json:"items,omitempty"`
	Token     *ListToken `json:"token,omitempty"`
}

func (GetResult) Kind() ResultKind  { return KindGetResult }
func (PutAck) Kind() ResultKind     { return KindPutAck }
func (ListResult) Kind() ResultKind { return KindListResult }
func (Finished) Kind() ResultKind   { return KindFinished }

func (GetResult) isResult()  {}
func (PutAck) isResult()     {}
func (ListResult) isResult() {}
func (Finished) isResult()   {}
