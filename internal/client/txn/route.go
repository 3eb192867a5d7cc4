package txn

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/wire"
)

type delivery struct {
	res wire.Result
	err error
}

// route is the delivery point of one outstanding request. One-shot routes
// receive exactly one delivery on slot; list routes queue every message
// until the finished one, without ever blocking the reader.
type route struct {
	seq    uint64
	kind   wire.CommandKind
	expect wire.ResultKind
	list   bool

	slot chan delivery

	mu     sync.Mutex
	queue  []delivery
	notify chan struct{}
}

func newRoute(seq uint64, kind wire.CommandKind, expect wire.ResultKind) *route {
	r := &route{seq: seq, kind: kind, expect: expect}
	if kind == wire.KindBeginList || kind == wire.KindContinueList {
		r.list = true
		r.notify = make(chan struct{}, 1)
	} else {
		r.slot = make(chan delivery, 1)
	}
	return r
}

// deliver never blocks: slots have room for their single delivery and
// queues are unbounded.
func (r *route) deliver(d delivery) {
	if !r.list {
		select {
		case r.slot <- d:
		default:
		}
		return
	}

	r.mu.Lock()
	r.queue = append(r.queue, d)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *route) wait(ctx context.Context) (delivery, error) {
	select {
	case d := <-r.slot:
		return d, nil
	case <-ctx.Done():
		return delivery{}, ctx.Err()
	}
}

func (r *route) pop(ctx context.Context) (delivery, error) {
	for {
		r.mu.Lock()
		if len(r.queue) > 0 {
			d := r.queue[0]
			r.queue = r.queue[1:]
			r.mu.Unlock()
			return d, nil
		}
		r.mu.Unlock()

		select {
		case <-r.notify:
		case <-ctx.Done():
			return delivery{}, ctx.Err()
		}
	}
}

// Recv makes a list route a cursor.ListSource.
func (r *route) Recv(ctx context.Context) (wire.Result, error) {
	d, err := r.pop(ctx)
	if err != nil {
		return nil, err
	}
	return d.res, d.err
}
