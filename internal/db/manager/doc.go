// Package manager owns the single warehouse connection used by a whetl
// process and hands out scoped cursors over it.
//
// A Cursor holds the connection exclusively until it is closed. With
// autocommit disabled every cursor runs inside a transaction that is
// committed by Close when no statement failed and rolled back otherwise.
// Connections are opened lazily: a Cursor call reconnects when there is no
// connection yet or the previous one was closed by the server. Nothing is
// retried after a statement fails.
//
// # Example Usage
//
//	mgr := manager.New(connector, logger, manager.WithAutocommit(false))
//	defer mgr.Close(ctx)
//
//	err := mgr.WithCursor(ctx, func(cur *manager.Cursor) error {
//	    _, err := cur.Exec(ctx, "DELETE FROM t WHERE d < %(cutoff)s", map[string]any{"cutoff": cutoff})
//	    return err
//	})
//
// Every statement is rendered by sqltemplate and sent with the simple query
// protocol, so a file may contain several statements separated by semicolons.
//
// # Thread Safety
//
// Manager is safe for concurrent use; callers are serialized on the
// connection. Cursor is not safe for concurrent use.
package manager
