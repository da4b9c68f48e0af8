package manager

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeConn records statements and answers with canned results.
type fakeConn struct {
	closed   bool
	execs    []string
	queries  []string
	modes    []any
	tag      string
	execErr  error
	rows     *fakeRows
	tx       *fakeTx
	closeErr error
	beginErr error
	onExec   func(sql string) error
}

func (f *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.modes = append(f.modes, args...)
	if f.onExec != nil {
		if err := f.onExec(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	f.modes = append(f.modes, args...)
	if f.execErr != nil {
		return nil, f.execErr
	}
	if f.rows == nil {
		return &fakeRows{}, nil
	}
	return f.rows, nil
}

func (f *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.tx = &fakeTx{conn: f}
	return f.tx, nil
}

func (f *fakeConn) Close(ctx context.Context) error {
	f.closed = true
	return f.closeErr
}

func (f *fakeConn) IsClosed() bool {
	return f.closed
}

// fakeTx routes statements to its connection and records the outcome.
// Methods the manager never calls are left to the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	conn       *fakeConn
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.conn.Exec(ctx, sql, args...)
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.conn.Query(ctx, sql, args...)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeRows serves a fixed result set.
type fakeRows struct {
	pgx.Rows
	columns []string
	data    [][]any
	pos     int
	err     error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.pos-1], nil
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() { r.closed = true }

// dialer hands out fresh fakeConns and counts dials.
type dialer struct {
	dials int
	err   error
	conns []*fakeConn
	setup func(*fakeConn)
}

func (d *dialer) dial(ctx context.Context) (Conn, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	c := &fakeConn{tag: "SELECT 0"}
	if d.setup != nil {
		d.setup(c)
	}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *dialer) last() *fakeConn {
	return d.conns[len(d.conns)-1]
}
