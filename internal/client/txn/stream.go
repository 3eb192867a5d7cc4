package txn

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/wire"
)

// Stream is the duplex channel a session runs on. Recv returns io.EOF once
// the server has closed its side.
type Stream interface {
	Send(*wire.Request) error
	Recv() (*wire.Response, error)
	CloseSend() error
}

// Opener opens transaction streams. The stream must be torn down when ctx
// is cancelled.
type Opener interface {
	OpenStream(ctx context.Context) (Stream, error)
}
