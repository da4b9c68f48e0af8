package bulk

import (
	"context"
	"fmt"

	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/internal/storage"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// Runner executes COPY and UNLOAD statements with one set of credentials.
type Runner struct {
	exec   whetl.Executor
	creds  storage.Credentials
	logger whetl.Logger
}

// NewRunner creates a Runner. Panics if exec or logger is nil.
func NewRunner(exec whetl.Executor, creds storage.Credentials, logger whetl.Logger) *Runner {
	if exec == nil {
		panic("exec cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Runner{exec: exec, creds: creds, logger: logger}
}

// Load copies the files under spec.Location into spec.Table and returns the
// number of rows loaded.
func (r *Runner) Load(ctx context.Context, spec whetl.LoadSpec) (int64, error) {
	sql, err := GenerateLoad(spec, r.creds)
	if err != nil {
		return 0, err
	}

	r.logger.Info("Copying from: %s to %s", spec.Location, spec.Table)
	n, err := r.exec.Exec(ctx, sqltemplate.Escape(sql), nil)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", spec.Table, err)
	}
	r.logger.Verbose("[Copy] Loaded %d rows into %s", n, spec.Table)
	return n, nil
}

// Unload writes the result of spec.Query under spec.Location.
func (r *Runner) Unload(ctx context.Context, spec whetl.UnloadSpec) error {
	sql, err := GenerateUnload(spec, r.creds)
	if err != nil {
		return err
	}

	r.logger.Info("Unloading query: '%s' to %s", whetl.PreviewSQL(spec.Query), spec.Location)
	if _, err := r.exec.Exec(ctx, sqltemplate.Escape(sql), nil); err != nil {
		return fmt.Errorf("unload to %s: %w", spec.Location, err)
	}
	return nil
}
