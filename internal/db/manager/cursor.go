package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// ErrCursorClosed is returned by operations on a closed cursor.
var ErrCursorClosed = errors.New("cursor is closed")

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Cursor is an exclusive, scoped handle on the manager's connection.
type Cursor struct {
	manager *Manager
	q       querier
	tx      pgx.Tx
	failed  bool
	closed  bool
}

// Exec renders sql with params and executes it. Returns the rows affected
// by the last statement.
func (c *Cursor) Exec(ctx context.Context, sql string, params map[string]any) (int64, error) {
	rendered, err := c.render(sql, params)
	if err != nil {
		return 0, err
	}

	tag, err := c.q.Exec(ctx, rendered, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		c.failed = true
		return 0, whetl.NewExecutionError(sqltemplate.Redact(rendered), err)
	}
	c.manager.logger.Verbose("%s", tag.String())
	return tag.RowsAffected(), nil
}

// Query renders sql with params and returns every row keyed by column name.
func (c *Cursor) Query(ctx context.Context, sql string, params map[string]any) ([]map[string]any, error) {
	rendered, err := c.render(sql, params)
	if err != nil {
		return nil, err
	}

	rows, err := c.q.Query(ctx, rendered, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		c.failed = true
		return nil, whetl.NewExecutionError(sqltemplate.Redact(rendered), err)
	}
	result, err := collectRows(rows)
	if err != nil {
		c.failed = true
		return nil, whetl.NewExecutionError(sqltemplate.Redact(rendered), err)
	}
	return result, nil
}

// ExecFile reads path and executes its content as one template.
func (c *Cursor) ExecFile(ctx context.Context, path string, params map[string]any) (int64, error) {
	if c.closed {
		return 0, ErrCursorClosed
	}
	sql, err := readSQLFile(path)
	if err != nil {
		return 0, err
	}
	c.manager.logger.Info("Executing %s", path)
	affected, err := c.Exec(ctx, sql, params)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return affected, nil
}

// Close releases the connection. In transactional mode it commits when every
// statement succeeded and rolls back otherwise. Calling Close twice is a no-op.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	defer c.manager.mu.Unlock()

	if c.tx == nil {
		return nil
	}
	if c.failed {
		if err := c.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		c.manager.logger.Verbose("Rolled back")
		return nil
	}
	if err := c.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	c.manager.logger.Verbose("Committed")
	return nil
}

func (c *Cursor) render(sql string, params map[string]any) (string, error) {
	if c.closed {
		return "", ErrCursorClosed
	}
	rendered, err := sqltemplate.Render(sql, params)
	if err != nil {
		return "", err
	}
	c.manager.logger.Verbose("Executing SQL:\n%s", sqltemplate.Redact(rendered))
	return rendered, nil
}

func collectRows(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		fields := rows.FieldDescriptions()
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
