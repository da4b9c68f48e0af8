package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/whetl/internal/sqltemplate"
)

// DropTables drops every table in schema on one cursor. With ifExists,
// missing tables are ignored; otherwise the first missing table fails the
// call (and, with autocommit off, rolls back the drops before it).
func (m *Manager) DropTables(ctx context.Context, schema string, tables []string, ifExists bool) (int, error) {
	statements, err := dropStatements(schema, tables, ifExists)
	if err != nil {
		return 0, err
	}

	dropped := 0
	err = m.WithCursor(ctx, func(cur *Cursor) error {
		for i, stmt := range statements {
			if _, err := cur.Exec(ctx, stmt, nil); err != nil {
				return fmt.Errorf("failed to drop %s: %w", tables[i], err)
			}
			dropped++
			m.logger.Info("Dropped %s.%s", schema, tables[i])
		}
		return nil
	})
	return dropped, err
}

func dropStatements(schema string, tables []string, ifExists bool) ([]string, error) {
	if err := sqltemplate.ValidateIdentifier(schema); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	clause := "DROP TABLE "
	if ifExists {
		clause += "IF EXISTS "
	}

	statements := make([]string, 0, len(tables))
	for _, table := range tables {
		if err := sqltemplate.ValidateIdentifier(table); err != nil {
			return nil, fmt.Errorf("table: %w", err)
		}
		name := pgx.Identifier{strings.ToLower(schema), strings.ToLower(table)}.Sanitize()
		statements = append(statements, clause+name)
	}
	return statements, nil
}
