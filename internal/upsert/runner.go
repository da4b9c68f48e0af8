package upsert

import (
	"context"
	"fmt"

	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// Result reports the rows touched by one upsert.
type Result struct {
	Updated  int64
	Inserted int64
}

// Runner executes upserts through an Executor.
type Runner struct {
	exec    whetl.Executor
	dialect whetl.Dialect
	logger  whetl.Logger
}

// NewRunner creates a Runner. Panics if exec or logger is nil.
func NewRunner(exec whetl.Executor, dialect whetl.Dialect, logger whetl.Logger) *Runner {
	if exec == nil {
		panic("exec cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Runner{exec: exec, dialect: dialect, logger: logger}
}

// Run checks the source for duplicate keys (unless the spec allows them),
// then executes the UPDATE followed by the INSERT.
func (r *Runner) Run(ctx context.Context, spec whetl.UpsertSpec) (Result, error) {
	stmts, err := Generate(spec, r.dialect)
	if err != nil {
		return Result{}, err
	}

	r.logger.Verbose("Running upsert from %s to %s", spec.SourceTable, spec.TargetTable)

	if !spec.AllowDuplicateSourceKeys {
		if err := r.checkDuplicates(ctx, spec, stmts.DuplicateCheck); err != nil {
			return Result{}, err
		}
	}

	var res Result
	res.Updated, err = r.exec.Exec(ctx, sqltemplate.Escape(stmts.Update), nil)
	if err != nil {
		return res, fmt.Errorf("upsert update of %s: %w", spec.TargetTable, err)
	}
	r.logger.Verbose("[Upsert] Updated %d records", res.Updated)

	res.Inserted, err = r.exec.Exec(ctx, sqltemplate.Escape(stmts.Insert), nil)
	if err != nil {
		return res, fmt.Errorf("upsert insert into %s (after updating %d rows): %w", spec.TargetTable, res.Updated, err)
	}
	r.logger.Verbose("[Upsert] Inserted %d new records", res.Inserted)

	return res, nil
}

func (r *Runner) checkDuplicates(ctx context.Context, spec whetl.UpsertSpec, sql string) error {
	rows, err := r.exec.Query(ctx, sqltemplate.Escape(sql), nil)
	if err != nil {
		return fmt.Errorf("upsert duplicate check on %s: %w", spec.SourceTable, err)
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := whetl.RowInt64(rows[0], "duplicate_keys")
	if err != nil {
		return fmt.Errorf("upsert duplicate check on %s: %w", spec.SourceTable, err)
	}
	if n > 0 {
		return fmt.Errorf("%s has %d uniqueness key(s) %v shared by differing rows: %w",
			spec.SourceTable, n, spec.UniquenessKeys, whetl.ErrDuplicateSourceKeys)
	}
	return nil
}
