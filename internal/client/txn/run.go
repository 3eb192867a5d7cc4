package txn

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophstore/internal/common"
)

// Handler performs the operations of one transaction.
type Handler func(ctx context.Context, s *Session) error

// Run opens a session on a fresh stream and runs fn in it. A nil return
// commits. An error aborts, unless it came from the stream itself, and is
// returned unchanged; abort failures are logged and dropped. A commit
// refused because of unresolved requests aborts as well.
func Run(ctx context.Context, opener Opener, fn Handler, opts ...Option) (*CommitResult, error) {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := opener.OpenStream(sctx)
	if err != nil {
		return nil, err
	}

	s, err := Open(sctx, stream, append(opts, WithCancel(cancel))...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			s.abortQuietly(sctx, nil)
			panic(p)
		}
	}()

	if err := fn(sctx, s); err != nil {
		if !common.IsProtocol(err) {
			s.abortQuietly(sctx, err)
		}
		return nil, err
	}

	res, err := s.Commit(sctx)
	if err != nil && errors.Is(err, common.ErrInflightRequests) {
		s.abortQuietly(sctx, err)
	}
	return res, err
}

func (s *Session) abortQuietly(ctx context.Context, cause error) {
	if err := s.Abort(ctx); err != nil {
		s.logger.Warn(ctx, "abort failed", "error", err, "cause", errString(cause))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
