package txn

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/cursor"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"github.com/google/uuid"
)

type state int

const (
	stateActive state = iota
	stateCommitting
	stateAborting
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateCommitting:
		return "committing"
	case stateAborting:
		return "aborting"
	default:
		return "closed"
	}
}

// CommitResult is the outcome of a commit.
type CommitResult struct {
	Committed bool
	// Items holds the stored form of every put item, including server
	// assigned keys and versions.
	Items []wire.Item
}

type Option func(*Session)

func WithLogger(l logging.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithCancel hands the session the cancel func of the context its stream
// was opened with; the session calls it once it fails. Without it the
// caller owns the stream and must end it, since the reader goroutine only
// returns when Recv does.
func WithCancel(cancel context.CancelFunc) Option {
	return func(s *Session) {
		s.cancel = cancel
	}
}

type Session struct {
	id     string
	stream Stream
	logger logging.Logger
	cancel context.CancelFunc

	// writeMu keeps sequence allocation and Send in one critical section so
	// ids reach the wire strictly increasing.
	writeMu sync.Mutex

	mu       sync.Mutex // protects the fields below
	nextSeq  uint64
	inflight map[uint64]wire.CommandKind
	routes   map[uint64]*route
	state    state
	final    bool // commit/abort answered; the stream is draining
	failure  error

	recvDone chan struct{}
}

// Open starts a session on stream and sends the begin command.
func Open(ctx context.Context, stream Stream, opts ...Option) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		stream:   stream,
		logger:   logging.Nop(),
		inflight: map[uint64]wire.CommandKind{},
		routes:   map[uint64]*route{},
		recvDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "txn", "session", s.id)

	go s.readLoop()

	if _, err := s.send(ctx, wire.Begin{}); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "session opened")
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Get reads items by key. Missing keys are absent from the result.
func (s *Session) Get(ctx context.Context, keys []string) ([]wire.Item, error) {
	res, err := s.call(ctx, wire.Get{Keys: keys})
	if err != nil {
		return nil, err
	}
	return res.(wire.GetResult).Items, nil
}

// Put stages items and returns their final keys, in order. Server-assigned
// keys are known here; full items only come with the commit result.
func (s *Session) Put(ctx context.Context, items []wire.PutItem) ([]string, error) {
	res, err := s.call(ctx, wire.Put{Items: items})
	if err != nil {
		return nil, err
	}
	return res.(wire.PutAck).Keys, nil
}

// Delete stages removals. The server does not answer deletes; failures
// surface at commit.
func (s *Session) Delete(ctx context.Context, keys []string) error {
	_, err := s.send(ctx, wire.Delete{Keys: keys})
	return err
}

// BeginList lists items under prefix. The cursor must be drained before
// Commit, otherwise commit reports the list as in flight.
func (s *Session) BeginList(ctx context.Context, prefix string, opts wire.ListOptions) (*cursor.ListCursor[wire.Item], error) {
	r, err := s.send(ctx, wire.BeginList{Prefix: prefix, Options: opts})
	if err != nil {
		return nil, err
	}
	return cursor.NewListCursor[wire.Item](r, cursor.Raw), nil
}

// ContinueList resumes a list from a token with CanContinue set.
func (s *Session) ContinueList(ctx context.Context, token wire.ListToken) (*cursor.ListCursor[wire.Item], error) {
	r, err := s.send(ctx, wire.ContinueList{Token: token.Raw})
	if err != nil {
		return nil, err
	}
	return cursor.NewListCursor[wire.Item](r, cursor.Raw), nil
}

// Commit finishes the transaction. It fails without sending anything when
// requests are still in flight.
func (s *Session) Commit(ctx context.Context) (*CommitResult, error) {
	res, err := s.call(ctx, wire.Commit{})
	if err != nil {
		return nil, err
	}
	fin := res.(wire.Finished)
	s.close(ctx)

	s.logger.Debug(ctx, "session committed", "committed", fin.Committed, "items", len(fin.Items))
	return &CommitResult{Committed: fin.Committed, Items: fin.Items}, nil
}

// Abort discards the transaction. On a session that already failed there
// is nothing to send and Abort only releases the stream.
func (s *Session) Abort(ctx context.Context) error {
	s.mu.Lock()
	failed := s.failure != nil && s.state == stateActive
	if failed {
		s.state = stateClosed
	}
	s.mu.Unlock()
	if failed {
		s.teardown()
		return nil
	}

	if _, err := s.call(ctx, wire.Abort{}); err != nil {
		s.teardown()
		return err
	}
	s.close(ctx)

	s.logger.Debug(ctx, "session aborted")
	return nil
}

func (s *Session) call(ctx context.Context, cmd wire.Command) (wire.Result, error) {
	r, err := s.send(ctx, cmd)
	if err != nil {
		return nil, err
	}

	d, err := r.wait(ctx)
	if err != nil {
		// The command is on the wire and its answer can no longer be
		// matched to anyone; the stream is unusable from here on.
		s.fail(ctx, err)
		return nil, err
	}
	return d.res, d.err
}

// send allocates the next sequence id, registers the route of commands
// that get an answer and writes the envelope.
func (s *Session) send(ctx context.Context, cmd wire.Command) (*route, error) {
	kind := cmd.Kind()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if err := s.admit(kind); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.nextSeq++
	seq := s.nextSeq

	var r *route
	if expect, ok := kind.Expects(); ok {
		r = newRoute(seq, kind, expect)
		s.routes[seq] = r
		s.inflight[seq] = kind
	}
	s.mu.Unlock()

	s.logger.Debug(ctx, "send", "seq", seq, "kind", kind)

	if err := s.stream.Send(&wire.Request{SequenceID: seq, Command: cmd}); err != nil {
		err = streamError(string(kind), err)
		s.fail(ctx, err)
		return nil, err
	}
	return r, nil
}

// admit checks whether a command of kind may be sent now and moves the
// state machine for commit and abort. Called with s.mu held.
func (s *Session) admit(kind wire.CommandKind) error {
	if s.state == stateClosed || s.state == stateCommitting || s.state == stateAborting {
		return common.NewError(common.CodeSessionClosed, "%s on %s session", kind, s.state)
	}
	if s.failure != nil {
		return s.failure
	}

	switch kind {
	case wire.KindCommit:
		if len(s.inflight) > 0 {
			return inflightError(s.pendingKinds())
		}
		s.state = stateCommitting
	case wire.KindAbort:
		s.state = stateAborting
	}
	return nil
}

func (s *Session) pendingKinds() []wire.CommandKind {
	seqs := make([]uint64, 0, len(s.inflight))
	for seq := range s.inflight {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	kinds := make([]wire.CommandKind, 0, len(seqs))
	for _, seq := range seqs {
		kinds = append(kinds, s.inflight[seq])
	}
	return kinds
}

func (s *Session) readLoop() {
	defer close(s.recvDone)

	ctx := context.Background()
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.endOfStream(ctx)
				return
			}
			s.fail(ctx, streamError("recv", err))
			return
		}

		if err := s.dispatch(ctx, resp); err != nil {
			s.fail(ctx, err)
		}
	}
}

func (s *Session) dispatch(ctx context.Context, resp *wire.Response) error {
	if resp.Result == nil {
		return common.NewError(common.CodeUnexpectedType, "response %d has no result", resp.SequenceID)
	}
	kind := resp.Result.Kind()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return nil
	}

	r, ok := s.routes[resp.SequenceID]
	if !ok {
		if s.final {
			s.logger.Debug(ctx, "dropping response after close", "seq", resp.SequenceID, "kind", kind)
			return nil
		}
		return common.NewError(common.CodeUnexpectedMessageID,
			"response %d (%s) matches no outstanding request", resp.SequenceID, kind)
	}

	if r.list {
		switch kind {
		case wire.KindListResult:
		case wire.KindFinished:
			s.resolve(r)
		default:
			return common.NewError(common.CodeUnexpectedType,
				"response %d: got %s for %s, want %s or %s", r.seq, kind, r.kind, wire.KindListResult, wire.KindFinished)
		}
		r.deliver(delivery{res: resp.Result})
		return nil
	}

	if kind != r.expect {
		return common.NewError(common.CodeUnexpectedType,
			"response %d: got %s for %s, want %s", r.seq, kind, r.kind, r.expect)
	}
	s.resolve(r)
	if r.kind == wire.KindCommit || r.kind == wire.KindAbort {
		s.final = true
	}
	r.deliver(delivery{res: resp.Result})
	return nil
}

// resolve removes a route that got its terminal response. Called with s.mu held.
func (s *Session) resolve(r *route) {
	delete(s.routes, r.seq)
	delete(s.inflight, r.seq)
}

func (s *Session) endOfStream(ctx context.Context) {
	s.mu.Lock()
	final := s.final
	s.mu.Unlock()

	if final {
		s.failRoutes(common.NewError(common.CodeSessionClosed, "session closed before response"))
		return
	}
	s.fail(ctx, common.NewError(common.CodeEndOfStream, "transaction stream ended"))
}

// fail poisons the session with err: every waiter receives it and later
// calls return it. The first failure wins.
func (s *Session) fail(ctx context.Context, err error) {
	s.mu.Lock()
	first := s.failure == nil
	if first {
		s.failure = err
	}
	s.mu.Unlock()

	if first {
		s.logger.Warn(ctx, "session failed", "error", err)
	}
	s.failRoutes(err)
	s.teardown()
}

func (s *Session) failRoutes(err error) {
	s.mu.Lock()
	routes := s.routes
	s.routes = map[uint64]*route{}
	s.mu.Unlock()

	for _, r := range routes {
		r.deliver(delivery{err: err})
	}
}

func (s *Session) teardown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// close half-closes the stream and drains the inbound side until the
// server ends it.
func (s *Session) close(ctx context.Context) {
	if err := s.stream.CloseSend(); err != nil {
		s.logger.Debug(ctx, "close send", "error", err)
	}

	select {
	case <-s.recvDone:
	case <-ctx.Done():
		s.teardown()
	}

	s.mu.Lock()
	s.state = stateClosed
	s.mu.Unlock()
}
