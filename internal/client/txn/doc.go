// Package txn implements a transaction session: several logical
// request/response exchanges multiplexed over one bidirectional stream.
//
// Every command gets the next sequence id (the begin command sent by Open
// is 1). A single reader goroutine owns the inbound side of the stream and
// routes each response by sequence id, either to a one-shot slot (get, put,
// commit, abort) or to the queue of a list stream, so concurrent calls on a
// session never receive each other's results. A response that matches no
// outstanding request, or carries the wrong result kind, poisons the
// session: every waiter fails and later calls return the same error.
//
// Lifecycle: Active -> Committing|Aborting -> Closed. Commit refuses to
// start while requests are still unresolved. Run wraps a handler with
// commit-on-success and best-effort abort-on-error.
package txn
