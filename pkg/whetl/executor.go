package whetl

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Executor runs rendered SQL templates against the warehouse.
// The Connection Manager and its cursors implement it; upsert, bulk and
// ledger code depend only on this interface.
type Executor interface {
	// Exec renders sql with params and executes it, returning the rows
	// affected by the last statement.
	Exec(ctx context.Context, sql string, params map[string]any) (int64, error)

	// Query renders sql with params and returns every row as a column-name map.
	Query(ctx context.Context, sql string, params map[string]any) ([]map[string]any, error)
}

// FileExecutor is an Executor that can also run whole SQL files.
type FileExecutor interface {
	Executor

	// ExecFile reads path, renders it as one template and executes it.
	ExecFile(ctx context.Context, path string, params map[string]any) (int64, error)
}

// Connector establishes warehouse connections.
// Different implementations handle password and cloud IAM authentication.
type Connector interface {
	// Connect opens a single connection. The caller owns and closes it.
	Connect(ctx context.Context) (*pgx.Conn, error)
}
