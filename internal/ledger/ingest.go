package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// FileRef names one file covered by an ingestion run.
type FileRef struct {
	Name string
	Date time.Time
	Path string
}

// RunIngestion executes sqlFile and then records the outcome for every file:
// SUCCESS when the file ran, FAIL when the server rejected a statement, and
// UNKNOWN when the run stopped before reaching the server (unreadable file,
// missing parameter). The ledger is written exactly once per file on every
// path; write errors are joined to the execution error, never replace it.
func (l *Ledger) RunIngestion(ctx context.Context, sqlFile string, params map[string]any, source string, files []FileRef) (status whetl.Status, err error) {
	fe, ok := l.exec.(whetl.FileExecutor)
	if !ok {
		return whetl.StatusUnknown, fmt.Errorf("executor %T cannot run SQL files", l.exec)
	}

	status = whetl.StatusUnknown
	defer func() {
		if markErr := l.mark(context.WithoutCancel(ctx), source, files, status); markErr != nil {
			err = errors.Join(err, markErr)
		}
	}()

	if _, err = fe.ExecFile(ctx, sqlFile, params); err != nil {
		if errors.Is(err, whetl.ErrExecutionFailed) {
			status = whetl.StatusFail
		}
		l.logger.Error("Failed to run ingest queries with error %v", err)
		return status, err
	}

	status = whetl.StatusSuccess
	return status, nil
}

func (l *Ledger) mark(ctx context.Context, source string, files []FileRef, status whetl.Status) error {
	var errs []error
	for _, f := range files {
		_, err := l.LookupOrCreate(ctx, RecordRequest{
			Source:   source,
			FileName: f.Name,
			FileDate: f.Date,
			Status:   status,
			FilePath: f.Path,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("mark %s as %s: %w", f.Name, status, err))
		}
	}
	if len(errs) == 0 {
		l.logger.Verbose("Marked %d file(s) as %s", len(files), status)
	}
	return errors.Join(errs...)
}
