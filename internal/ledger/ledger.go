package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// RecordRequest asks for a file's record to be moved to Status, creating it
// when allowed.
type RecordRequest struct {
	Source   string
	FileName string
	FileDate time.Time
	Status   whetl.Status
	FilePath string
}

// Ledger reads and writes one imports table.
type Ledger struct {
	exec    whetl.Executor
	table   Table
	cache   *Cache
	logger  whetl.Logger
	dialect whetl.Dialect
}

type Option func(*Ledger)

// WithDialect selects the current-timestamp expression used for time_imported.
func WithDialect(d whetl.Dialect) Option {
	return func(l *Ledger) {
		l.dialect = d
	}
}

// New creates a Ledger over table. A nil cache gets a private one.
// Panics if exec or logger is nil.
func New(exec whetl.Executor, table Table, cache *Cache, logger whetl.Logger, opts ...Option) (*Ledger, error) {
	if exec == nil {
		panic("exec cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewCache()
	}

	l := &Ledger{
		exec:    exec,
		table:   table,
		cache:   cache,
		logger:  logger,
		dialect: whetl.DialectRedshift,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Table returns the table this ledger writes to.
func (l *Ledger) Table() Table {
	return l.table
}

// ImportID returns the id of the record for (source, fileName). The boolean
// is false when no record exists.
func (l *Ledger) ImportID(ctx context.Context, source, fileName string) (int64, bool, error) {
	source = normalizeSource(source)
	if id, ok := l.cache.Get(source, fileName); ok {
		return id, true, nil
	}

	rows, err := l.exec.Query(ctx, fmt.Sprintf(`
		SELECT id FROM %s
		WHERE source = %%(source)s AND file_name = %%(file_name)s`, l.table.Name()),
		map[string]any{"source": source, "file_name": fileName})
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up import id for %s: %w", fileName, err)
	}

	switch len(rows) {
	case 0:
		l.logger.Info("No associated import id found for %s", fileName)
		return 0, false, nil
	case 1:
	default:
		ambiguous := &whetl.AmbiguousImportRecordError{Source: source, FileName: fileName, Count: len(rows)}
		l.logger.Error("%v", ambiguous)
		return 0, false, ambiguous
	}

	id, err := whetl.RowInt64(rows[0], "id")
	if err != nil {
		return 0, false, fmt.Errorf("failed to read import id for %s: %w", fileName, err)
	}
	l.cache.Put(source, fileName, id)
	return id, true, nil
}

// LookupOrCreate moves the record for req to req.Status and returns its id.
//
// A missing record is inserted when the status is STARTED or SKIPPED and
// re-read to learn its id; any other status yields *whetl.InvalidTransitionError.
// An existing record is always updated. Moving into STARTED stamps
// time_imported.
func (l *Ledger) LookupOrCreate(ctx context.Context, req RecordRequest) (int64, error) {
	status, err := whetl.ParseStatus(string(req.Status))
	if err != nil {
		return 0, err
	}
	source := normalizeSource(req.Source)

	id, found, err := l.ImportID(ctx, source, req.FileName)
	if err != nil {
		return 0, err
	}

	switch {
	case found:
		if err := l.updateStatus(ctx, id, status); err != nil {
			return 0, err
		}
		return id, nil
	case !status.CanCreate():
		return 0, &whetl.InvalidTransitionError{Source: source, FileName: req.FileName, Status: status}
	}

	if err := l.insert(ctx, source, status, req); err != nil {
		return 0, err
	}
	id, found, err = l.ImportID(ctx, source, req.FileName)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("import record for %s/%s not visible after insert", source, req.FileName)
	}
	l.logger.Verbose("Created import record %d for %s with status %s", id, req.FileName, status)
	return id, nil
}

func (l *Ledger) insert(ctx context.Context, source string, status whetl.Status, req RecordRequest) error {
	var fileDate any
	if !req.FileDate.IsZero() {
		fileDate = req.FileDate
	}

	columns, values := "file_name, source, file_date, status, file_path", "%(file_name)s, %(source)s, %(file_date)s, %(status)s, %(file_path)s"
	if status == whetl.StatusStarted {
		columns += ", time_imported"
		values += ", " + l.dialect.Now()
	}

	_, err := l.exec.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s
		    (%s)
		VALUES (%s)`, l.table.Name(), columns, values),
		map[string]any{
			"file_name": req.FileName,
			"source":    source,
			"file_date": fileDate,
			"status":    status,
			"file_path": req.FilePath,
		})
	if err != nil {
		return fmt.Errorf("failed to create import record for %s: %w", req.FileName, err)
	}
	return nil
}

func (l *Ledger) updateStatus(ctx context.Context, id int64, status whetl.Status) error {
	set := "status = %(status)s"
	if status == whetl.StatusStarted {
		set += ", time_imported = " + l.dialect.Now()
	}

	_, err := l.exec.Exec(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = %%(id)s", l.table.Name(), set),
		map[string]any{"status": status, "id": id})
	if err != nil {
		return fmt.Errorf("failed to set import %d to %s: %w", id, status, err)
	}
	return nil
}

// SetStatusForIDs sets status on every listed record in one statement and
// returns the number of rows changed. An empty set is a no-op.
func (l *Ledger) SetStatusForIDs(ctx context.Context, ids whetl.IDSet, status whetl.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	status, err := whetl.ParseStatus(string(status))
	if err != nil {
		return 0, err
	}

	n, err := l.exec.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = %%(status)s
		WHERE id IN %%(ids)s`, l.table.Name()),
		map[string]any{"status": status, "ids": ids})
	if err != nil {
		return 0, fmt.Errorf("failed to set %d imports to %s: %w", len(ids), status, err)
	}
	return n, nil
}

// ListSuccessfulFiles returns the names of the source's files whose status
// IsDone (SUCCESS or SKIPPED).
func (l *Ledger) ListSuccessfulFiles(ctx context.Context, source string) (map[string]struct{}, error) {
	rows, err := l.exec.Query(ctx, fmt.Sprintf(`
		SELECT file_name FROM %s
		WHERE source = %%(source)s AND status IN %%(statuses)s`, l.table.Name()),
		map[string]any{
			"source":   normalizeSource(source),
			"statuses": doneStatuses(),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list imported files for %s: %w", source, err)
	}

	files := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		files[whetl.RowString(row, "file_name")] = struct{}{}
	}
	return files, nil
}

func doneStatuses() []whetl.Status {
	var done []whetl.Status
	for _, st := range whetl.AllStatuses {
		if st.IsDone() {
			done = append(done, st)
		}
	}
	return done
}

// PendingFiles returns the entries of listed that are not done yet, in
// order and without duplicates.
func (l *Ledger) PendingFiles(ctx context.Context, source string, listed []string) ([]string, error) {
	done, err := l.ListSuccessfulFiles(ctx, source)
	if err != nil {
		return nil, err
	}

	var pending []string
	seen := make(map[string]struct{}, len(listed))
	for _, name := range listed {
		if _, ok := done[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		pending = append(pending, name)
	}
	return pending, nil
}

// Records returns the source's records ordered by id. An empty source
// returns every record.
func (l *Ledger) Records(ctx context.Context, source string) ([]whetl.ImportRecord, error) {
	sql := fmt.Sprintf(`
		SELECT id, file_name, source, file_date, status, file_path,
		       time_imported, created_at, updated_at
		FROM %s`, l.table.Name())
	params := map[string]any{}
	if source != "" {
		sql += "\nWHERE source = %(source)s"
		params["source"] = normalizeSource(source)
	}
	sql += "\nORDER BY id"

	rows, err := l.exec.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.table, err)
	}

	records := make([]whetl.ImportRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(row map[string]any) (whetl.ImportRecord, error) {
	id, err := whetl.RowInt64(row, "id")
	if err != nil {
		return whetl.ImportRecord{}, err
	}
	rec := whetl.ImportRecord{
		ID:           id,
		FileName:     whetl.RowString(row, "file_name"),
		Source:       whetl.RowString(row, "source"),
		Status:       whetl.Status(strings.ToUpper(whetl.RowString(row, "status"))),
		FilePath:     whetl.RowString(row, "file_path"),
		TimeImported: whetl.RowTime(row, "time_imported"),
		CreatedAt:    whetl.RowTime(row, "created_at"),
		UpdatedAt:    whetl.RowTime(row, "updated_at"),
	}
	if d := whetl.RowTime(row, "file_date"); d != nil {
		rec.FileDate = *d
	}
	return rec, nil
}

func normalizeSource(source string) string {
	return strings.ToUpper(strings.TrimSpace(source))
}
