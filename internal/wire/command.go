package wire

// CommandKind names a command variant.
type CommandKind string

const (
	KindBegin        CommandKind = "begin"
	KindGet          CommandKind = "get"
	KindBeginList    CommandKind = "beginList"
	KindContinueList CommandKind = "continueList"
	KindPut          CommandKind = "put"
	KindDelete       CommandKind = "delete"
	KindCommit       CommandKind = "commit"
	KindAbort        CommandKind = "abort"
)

// Command is the payload of an outbound envelope.
type Command interface {
	Kind() CommandKind
	isCommand()
}

// Request is an outbound envelope on the transaction stream.
type Request struct {
	SequenceID uint64
	Command    Command
}

type Begin struct{}

type Get struct {
	Keys []string `json:"keys"`
}

type BeginList struct {
	Prefix  string      `json:"prefix"`
	Options ListOptions `json:"options,omitempty"`
}

type ContinueList struct {
	Token []byte `json:"token"`
}

type Put struct {
	Items []PutItem `json:"items"`
}

type Delete struct {
	Keys []string `json:"keys"`
}

type Commit struct{}

type Abort struct{}

func (Begin) Kind() CommandKind        { return KindBegin }
func (Get) Kind() CommandKind          { return KindGet }
func (BeginList) Kind() CommandKind    { return KindBeginList }
func (ContinueList) Kind() CommandKind { return KindContinueList }
func (Put) Kind() CommandKind          { return KindPut }
func (Delete) Kind() CommandKind       { return KindDelete }
func (Commit) Kind() CommandKind       { return KindCommit }
func (Abort) Kind() CommandKind        { return KindAbort }

func (Begin) isCommand()        {}
func (Get) isCommand()          {}
func (BeginList) isCommand()    {}
func (ContinueList) isCommand() {}
func (Put) isCommand()          {}
func (Delete) isCommand()       {}
func (Commit) isCommand()       {}
func (Abort) isCommand()        {}

// Expects reports the result kind that answers a command of kind k, and
// false for commands that get no response.
func (k CommandKind) Expects() (ResultKind, bool) {
	switch k {
	case KindGet:
		return KindGetResult, true
	case KindPut:
		return KindPutAck, true
	case KindBeginList, KindContinueList:
		return KindListResult, true
	case KindCommit, KindAbort:
		return KindFinished, true
	}
	return "", false
}
