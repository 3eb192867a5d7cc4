// Package cursor turns server-driven multi-message result streams into
// pull-based sequences.
//
// A list stream is any number of wire.ListResult messages followed by one
// wire.Finished carrying the continuation token. A sync stream is an
// optional wire.SyncReset, any number of wire.SyncBatch messages and one
// wire.SyncFinished. Both cursors are single-pass and scanner-style:
//
//	c := cursor.NewListCursor(src, decode)
//	for c.Next(ctx) {
//	    use(c.Value())
//	}
//	if err := c.Err(); err != nil { ... }
//	token := c.Token()
//
// A cursor cannot be rewound. To resume, pass its token to a new
// continueList (or syncList) call.
package cursor
