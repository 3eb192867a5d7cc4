package wire

import (
	"encoding/json"
	"fmt"
)

type rawEnvelope struct {
	Seq  uint64          `json:"seq,omitempty"`
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body,omitempty"`
}

func encode(seq uint64, kind string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawEnvelope{Seq: seq, Kind: kind, Body: b})
}

func decodeBody(raw rawEnvelope, v any) error {
	if len(raw.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.Body, v); err != nil {
		return fmt.Errorf("decode %s body: %w", raw.Kind, err)
	}
	return nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	if r.Command == nil {
		return nil, fmt.Errorf("request %d has no command", r.SequenceID)
	}
	return encode(r.SequenceID, string(r.Command.Kind()), r.Command)
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	switch CommandKind(raw.Kind) {
	case KindBegin:
		r.Command = Begin{}
	case KindGet:
		var c Get
		err = decodeBody(raw, &c)
		r.Command = c
	case KindBeginList:
		var c BeginList
		err = decodeBody(raw, &c)
		r.Command = c
	case KindContinueList:
		var c ContinueList
		err = decodeBody(raw, &c)
		r.Command = c
	case KindPut:
		var c Put
		err = decodeBody(raw, &c)
		r.Command = c
	case KindDelete:
		var c Delete
		err = decodeBody(raw, &c)
		r.Command = c
	case KindCommit:
		r.Command = Commit{}
	case KindAbort:
		r.Command = Abort{}
	default:
		return fmt.Errorf("unknown command kind %q", raw.Kind)
	}
	r.SequenceID = raw.Seq
	return err
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Result == nil {
		return nil, fmt.Errorf("response %d has no result", r.SequenceID)
	}
	return encode(r.SequenceID, string(r.Result.Kind()), r.Result)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	switch ResultKind(raw.Kind) {
	case KindGetResult:
		var v GetResult
		err = decodeBody(raw, &v)
		r.Result = v
	case KindPutAck:
		var v PutAck
		err = decodeBody(raw, &v)
		r.Result = v
	case KindListResult:
		var v ListResult
		err = decodeBody(raw, &v)
		r.Result = v
	case KindFinished:
		var v Finished
		err = decodeBody(raw, &v)
		r.Result = v
	default:
		return fmt.Errorf("unknown result kind %q", raw.Kind)
	}
	r.SequenceID = raw.Seq
	return err
}

// SyncEnvelope wraps a SyncMessage for transport.
type SyncEnvelope struct {
	Message SyncMessage
}

func (e SyncEnvelope) MarshalJSON() ([]byte, error) {
	if e.Message == nil {
		return nil, fmt.Errorf("empty sync message")
	}
	return encode(0, e.Message.syncKind(), e.Message)
}

func (e *SyncEnvelope) UnmarshalJSON(data []byte) error {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	switch raw.Kind {
	case "reset":
		e.Message = SyncReset{}
	case "batch":
		var v SyncBatch
		err = decodeBody(raw, &v)
		e.Message = v
	case "finished":
		var v SyncFinished
		err = decodeBody(raw, &v)
		e.Message = v
	default:
		return fmt.Errorf("unknown sync message kind %q", raw.Kind)
	}
	return err
}

func (s SyncEntries) MarshalJSON() ([]byte, error) {
	out := make([]rawEnvelope, 0, len(s))
	for _, entry := range s {
		b, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, rawEnvelope{Kind: entry.entryKind(), Body: b})
	}
	return json.Marshal(out)
}

func (s *SyncEntries) UnmarshalJSON(data []byte) error {
	var raws []rawEnvelope
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	entries := make(SyncEntries, 0, len(raws))
	for _, raw := range raws {
		switch raw.Kind {
		case "changed":
			var v Changed
			if err := decodeBody(raw, &v); err != nil {
				return err
			}
			entries = append(entries, v)
		case "deleted":
			var v Deleted
			if err := decodeBody(raw, &v); err != nil {
				return err
			}
			entries = append(entries, v)
		case "outsideWindow":
			var v UpdatedOutsideWindow
			if err := decodeBody(raw, &v); err != nil {
				return err
			}
			entries = append(entries, v)
		default:
			return fmt.Errorf("unknown sync entry kind %q", raw.Kind)
		}
	}
	*s = entries
	return nil
}
