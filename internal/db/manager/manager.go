package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// Conn is the part of *pgx.Conn the manager uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
	IsClosed() bool
}

// DialFunc opens a new connection.
type DialFunc func(ctx context.Context) (Conn, error)

// Manager owns one connection and serializes access to it through cursors.
type Manager struct {
	dial       DialFunc
	logger     whetl.Logger
	autocommit bool

	mu   sync.Mutex
	conn Conn
}

// Option configures a Manager.
type Option func(*Manager)

// WithAutocommit sets whether statements commit individually (true, the
// default) or per cursor.
func WithAutocommit(autocommit bool) Option {
	return func(m *Manager) { m.autocommit = autocommit }
}

// New creates a manager that opens connections through connector.
// Panics if connector or logger is nil.
func New(connector whetl.Connector, logger whetl.Logger, opts ...Option) *Manager {
	if connector == nil {
		panic("connector cannot be nil")
	}
	dial := func(ctx context.Context) (Conn, error) {
		conn, err := connector.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return NewWithDialer(dial, logger, opts...)
}

// NewWithDialer creates a manager around an arbitrary dial function.
// Panics if dial or logger is nil.
func NewWithDialer(dial DialFunc, logger whetl.Logger, opts ...Option) *Manager {
	if dial == nil {
		panic("dial cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	m := &Manager{dial: dial, logger: logger, autocommit: whetl.DefaultAutocommit}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect opens the connection if it is not already open.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureConnected(ctx)
}

// IsConnected reports whether an open connection is held.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil && !m.conn.IsClosed()
}

// Close closes the connection. Closing a manager that never connected is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close(ctx)
	m.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// ensureConnected dials when there is no usable connection. Caller holds mu.
func (m *Manager) ensureConnected(ctx context.Context) error {
	if m.conn != nil && !m.conn.IsClosed() {
		return nil
	}
	if m.conn != nil {
		m.logger.Verbose("Connection was closed, reconnecting")
	}
	conn, err := m.dial(ctx)
	if err != nil {
		m.conn = nil
		return err
	}
	m.conn = conn
	return nil
}

// Cursor acquires the connection, reconnecting if needed, and returns a
// cursor bound to it. The caller must Close the cursor.
func (m *Manager) Cursor(ctx context.Context) (*Cursor, error) {
	m.mu.Lock()
	if err := m.ensureConnected(ctx); err != nil {
		m.mu.Unlock()
		return nil, err
	}

	cur := &Cursor{manager: m, q: m.conn}
	if !m.autocommit {
		tx, err := m.conn.Begin(ctx)
		if err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		cur.tx = tx
		cur.q = tx
	}
	return cur, nil
}

// WithCursor runs fn with a fresh cursor and closes it afterwards, even when
// fn fails or panics. Errors from fn take precedence; a failed commit is
// joined to them.
func (m *Manager) WithCursor(ctx context.Context, fn func(cur *Cursor) error) (err error) {
	cur, err := m.Cursor(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			cur.failed = true
			_ = cur.Close(ctx)
			panic(r)
		}
		if err != nil {
			cur.failed = true
		}
		if closeErr := cur.Close(ctx); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(cur)
}

// Exec runs one rendered template on a short-lived cursor.
func (m *Manager) Exec(ctx context.Context, sql string, params map[string]any) (int64, error) {
	var affected int64
	err := m.WithCursor(ctx, func(cur *Cursor) error {
		var err error
		affected, err = cur.Exec(ctx, sql, params)
		return err
	})
	return affected, err
}

// Query runs one rendered template on a short-lived cursor and returns its rows.
func (m *Manager) Query(ctx context.Context, sql string, params map[string]any) ([]map[string]any, error) {
	var rows []map[string]any
	err := m.WithCursor(ctx, func(cur *Cursor) error {
		var err error
		rows, err = cur.Query(ctx, sql, params)
		return err
	})
	return rows, err
}

// ExecFile runs a whole SQL file on a short-lived cursor.
func (m *Manager) ExecFile(ctx context.Context, path string, params map[string]any) (int64, error) {
	var affected int64
	err := m.WithCursor(ctx, func(cur *Cursor) error {
		var err error
		affected, err = cur.ExecFile(ctx, path, params)
		return err
	})
	return affected, err
}

func readSQLFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read SQL file %s: %w", path, err)
	}
	return string(content), nil
}

var (
	_ whetl.FileExecutor = (*Manager)(nil)
	_ whetl.FileExecutor = (*Cursor)(nil)
	_ Conn               = (*pgx.Conn)(nil)
)
