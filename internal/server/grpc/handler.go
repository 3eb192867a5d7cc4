package grpc

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/store"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultClientID = "default"

func (s *GRPCServer) ExchangeToken(ctx context.Context, req *wire.TokenRequest) (*wire.TokenResponse, error) {

	if !s.clientSecret.Verify(req.Secret) {
		s.logger.Info(ctx, "token exchange refused")
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	token, err := auth.GenerateToken(defaultClientID, s.jwtSecret, s.now(), s.tokenTTL)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &wire.TokenResponse{Token: token, TTLSeconds: int64(s.tokenTTL.Seconds())}, nil

}

// Transact serves one transaction. Requests are handled in arrival order;
// writes are staged until commit.
func (s *GRPCServer) Transact(stream grpc.ServerStream) error {
	ctx := stream.Context()

	first := &wire.Request{}
	if err := stream.RecvMsg(first); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if _, ok := first.Command.(wire.Begin); !ok || first.SequenceID != 1 {
		return status.Error(codes.InvalidArgument, "transaction must start with begin")
	}

	tx := s.store.Begin()
	last := first.SequenceID

	for {
		req := &wire.Request{}
		if err := stream.RecvMsg(req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info(ctx, "transaction left without commit")
				return nil
			}
			return err
		}

		if req.SequenceID <= last {
			return status.Errorf(codes.InvalidArgument, "sequence id %d after %d", req.SequenceID, last)
		}
		last = req.SequenceID

		var err error
		switch c := req.Command.(type) {
		case wire.Get:
			err = send(stream, req.SequenceID, wire.GetResult{Items: tx.Get(c.Keys)})
		case wire.Put:
			err = send(stream, req.SequenceID, wire.PutAck{Keys: tx.Put(c.Items)})
		case wire.Delete:
			tx.Delete(c.Keys)
		case wire.BeginList:
			err = sendPage(stream, req.SequenceID, s.store.List(c.Prefix, c.Options))
		case wire.ContinueList:
			page, perr := s.store.Continue(c.Token)
			if perr != nil {
				return statusError(perr)
			}
			err = sendPage(stream, req.SequenceID, page)
		case wire.Commit:
			committed, items := tx.Commit()
			s.logger.Info(ctx, "transaction finished", "committed", committed, "items", len(items))
			return send(stream, req.SequenceID, wire.Finished{Committed: committed, Items: items})
		case wire.Abort:
			return send(stream, req.SequenceID, wire.Finished{})
		default:
			return status.Errorf(codes.InvalidArgument, "unexpected %s", req.Command.Kind())
		}
		if err != nil {
			return err
		}
	}
}

func (s *GRPCServer) List(req *wire.ListRequest, stream grpc.ServerStream) error {
	var page store.Page
	if len(req.Token) > 0 {
		var err error
		if page, err = s.store.Continue(req.Token); err != nil {
			return statusError(err)
		}
	} else {
		page = s.store.List(req.Prefix, req.Options)
	}
	return sendPage(stream, 0, page)
}

func (s *GRPCServer) Sync(req *wire.SyncRequest, stream grpc.ServerStream) error {
	diff, err := s.store.Sync(req.Token)
	if err != nil {
		return statusError(err)
	}

	if diff.Reset {
		if err := stream.SendMsg(&wire.SyncEnvelope{Message: wire.SyncReset{}}); err != nil {
			return err
		}
	}

	batch := s.store.PageSize()
	for start := 0; start < len(diff.Entries); start += batch {
		end := min(start+batch, len(diff.Entries))
		msg := wire.SyncBatch{Entries: wire.SyncEntries(diff.Entries[start:end])}
		if err := stream.SendMsg(&wire.SyncEnvelope{Message: msg}); err != nil {
			return err
		}
	}

	return stream.SendMsg(&wire.SyncEnvelope{Message: wire.SyncFinished{Token: diff.Token}})
}

func send(stream grpc.ServerStream, seq uint64, res wire.Result) error {
	return stream.SendMsg(&wire.Response{SequenceID: seq, Result: res})
}

func sendPage(stream grpc.ServerStream, seq uint64, page store.Page) error {
	if len(page.Items) > 0 {
		if err := send(stream, seq, wire.ListResult{Items: page.Items}); err != nil {
			return err
		}
	}
	token := page.Token
	return send(stream, seq, wire.Finished{Token: &token})
}

func statusError(err error) error {
	switch common.CodeOf(err) {
	case common.CodeInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case common.CodeUnauthorized:
		return status.Error(codes.Unauthenticated, err.Error())
	case common.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
