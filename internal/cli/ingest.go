package cli

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/ledger"
	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/internal/storage"
	"github.com/vvka-141/whetl/pkg/whetl"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <sql_file>",
	Short: "Run an ingest script and record its outcome in the ledger",
	Long: `Ingest marks each file STARTED in the import ledger, runs the SQL file,
then marks every file SUCCESS, or FAIL when the warehouse rejected a
statement. Runs that stop before reaching the warehouse leave UNKNOWN.

Files are named with --file, or discovered with --discover: every object
under the location (default: the configured storage prefix) without a
SUCCESS or SKIPPED record is ingested. The script receives the parameters
%(source)s and %(files)s (a tuple of file names) unless they are set
explicitly.

Examples:
  whetl ingest load_fyi.sql --source FYI --file events_2024-03-01.csv --date 2024-03-01
  whetl ingest load_fyi.sql --source FYI --discover s3://landing/fyi/`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSQLFiles,
	RunE:              runIngest,
}

type ingestFlagValues struct {
	source   string
	files    []string
	date     string
	discover string
	params   paramFlags
}

var ingestFlags ingestFlagValues

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFlags.source, "source", "", "Data source the files belong to")
	ingestCmd.Flags().StringArrayVar(&ingestFlags.files, "file", nil, "File being ingested (can be specified multiple times)")
	ingestCmd.Flags().StringVar(&ingestFlags.date, "date", "", "File date (YYYY-MM-DD) stored on new ledger records")
	ingestCmd.Flags().StringVar(&ingestFlags.discover, "discover", "",
		"Ingest pending objects under this location\n"+
			"Use --discover=. for the configured storage prefix")
	ingestCmd.MarkFlagsMutuallyExclusive("file", "discover")
	ingestCmd.MarkFlagsOneRequired("file", "discover")
	_ = ingestCmd.MarkFlagRequired("source")
	addParamFlags(ingestCmd, &ingestFlags.params)
}

func runIngest(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	parameters, err := loadMergedParameters(s.cfg, ingestFlags.params, s.verbose)
	if err != nil {
		return err
	}
	fileDate, err := parseFileDate(ingestFlags.date)
	if err != nil {
		return err
	}
	sqlFile := resolveFilePath(s.cfg, args[0])

	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		l, err := s.newLedger(mgr)
		if err != nil {
			return err
		}

		refs, err := ingestFileRefs(ctx, s, l, fileDate)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			s.logger.Info("Nothing to ingest for %s", ingestFlags.source)
			return nil
		}

		status, err := ingest(ctx, l, sqlFile, parameters, ingestFlags.source, refs)
		s.logger.Info("Ingested %d file(s) for %s: %s", len(refs), ingestFlags.source, status)
		return err
	})
}

// ingest records every file as STARTED, then runs the script through the ledger.
func ingest(ctx context.Context, l *ledger.Ledger, sqlFile string, params sqltemplate.Params, source string, refs []ledger.FileRef) (whetl.Status, error) {
	for _, ref := range refs {
		if _, err := l.LookupOrCreate(ctx, ledger.RecordRequest{
			Source:   source,
			FileName: ref.Name,
			FileDate: ref.Date,
			Status:   whetl.StatusStarted,
			FilePath: ref.Path,
		}); err != nil {
			return whetl.StatusUnknown, fmt.Errorf("mark %s as %s: %w", ref.Name, whetl.StatusStarted, err)
		}
	}

	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	scriptParams := sqltemplate.Merge(map[string]any{"source": source, "files": names}, params)

	return l.RunIngestion(ctx, sqlFile, scriptParams, source, refs)
}

// ingestFileRefs returns the files named by --file, or the pending objects
// under the --discover location.
func ingestFileRefs(ctx context.Context, s *session, l *ledger.Ledger, fileDate time.Time) ([]ledger.FileRef, error) {
	if ingestFlags.discover == "" {
		refs := make([]ledger.FileRef, len(ingestFlags.files))
		for i, f := range ingestFlags.files {
			refs[i] = ledger.FileRef{Name: path.Base(f), Date: fileDate, Path: f}
		}
		return refs, nil
	}

	loc := s.cfg.Storage.Base()
	if ingestFlags.discover != "." {
		resolved, err := storage.Resolve(loc, ingestFlags.discover)
		if err != nil {
			return nil, err
		}
		loc = resolved
	}
	names, err := listObjectNames(ctx, s, loc)
	if err != nil {
		return nil, err
	}
	pending, err := l.PendingFiles(ctx, ingestFlags.source, names)
	if err != nil {
		return nil, err
	}

	refs := make([]ledger.FileRef, len(pending))
	for i, name := range pending {
		refs[i] = ledger.FileRef{Name: name, Date: fileDate, Path: loc.Join(name).String()}
	}
	return refs, nil
}
