package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/bulk"
	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/internal/storage"
	"github.com/vvka-141/whetl/pkg/whetl"
)

var copyCmd = &cobra.Command{
	Use:   "copy <table> <location>",
	Short: "Bulk load files from object storage into a table (COPY)",
	Long: `Copy loads every file under an s3:// prefix into a table with COPY.

The location may be absolute (s3://bucket/prefix) or relative to the
storage bucket and prefix of the configuration. Credentials come from the
storage section (iam_role or an access key pair) or from the AWS default
credential chain.

Examples:
  whetl copy staging.events s3://landing/events/2024-03-01/ --option CSV --option "IGNOREHEADER 1"
  whetl copy staging.people people/ --columns id,name,age --option "FORMAT AS PARQUET"`,
	Args: RequireTableAndLocation,
	RunE: runCopy,
}

var unloadCmd = &cobra.Command{
	Use:   "unload <location>",
	Short: "Bulk unload a query result to object storage (UNLOAD)",
	Long: `Unload writes the result of a query under an s3:// prefix with UNLOAD.

The query is given inline with --query or read from --query-file; a query
file is rendered as a template with the usual parameter flags first.

Examples:
  whetl unload s3://exports/people/ --query "SELECT * FROM public.people" --option PARALLEL OFF
  whetl unload exports/day/ --query-file export_day.sql --param day=2024-03-01 --option "FORMAT AS PARQUET"`,
	Args: cobra.ExactArgs(1),
	RunE: runUnload,
}

type bulkFlagValues struct {
	columns   []string
	options   []string
	query     string
	queryFile string
	params    paramFlags
}

var (
	copyFlags   bulkFlagValues
	unloadFlags bulkFlagValues
)

func init() {
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(unloadCmd)

	copyCmd.Flags().StringSliceVar(&copyFlags.columns, "columns", nil,
		"Target columns in file order (default: all columns of the table)")
	copyCmd.Flags().StringArrayVar(&copyFlags.options, "option", nil,
		"COPY option appended verbatim (can be specified multiple times)\n"+
			"Example: --option CSV --option \"IGNOREHEADER 1\"")

	unloadCmd.Flags().StringVar(&unloadFlags.query, "query", "", "Query whose result is unloaded")
	unloadCmd.Flags().StringVar(&unloadFlags.queryFile, "query-file", "", "File holding the query, rendered as a template")
	unloadCmd.Flags().StringArrayVar(&unloadFlags.options, "option", nil,
		"UNLOAD option appended verbatim (can be specified multiple times)\n"+
			"Example: --option \"FORMAT AS PARQUET\" --option \"PARALLEL OFF\"")
	unloadCmd.MarkFlagsMutuallyExclusive("query", "query-file")
	unloadCmd.MarkFlagsOneRequired("query", "query-file")
	addParamFlags(unloadCmd, &unloadFlags.params)
}

func runCopy(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	loc, err := storage.Resolve(s.cfg.Storage.Base(), args[1])
	if err != nil {
		return err
	}
	spec := whetl.LoadSpec{
		Table:    args[0],
		Location: loc,
		Columns:  copyFlags.columns,
		Options:  copyFlags.options,
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		runner, err := s.newBulkRunner(ctx, mgr)
		if err != nil {
			return err
		}
		n, err := runner.Load(ctx, spec)
		if err != nil {
			return err
		}
		s.logger.Info("Loaded %d rows into %s", n, spec.Table)
		return nil
	})
}

func runUnload(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	loc, err := storage.Resolve(s.cfg.Storage.Base(), args[0])
	if err != nil {
		return err
	}
	query, err := resolveUnloadQuery(s, unloadFlags)
	if err != nil {
		return err
	}
	spec := whetl.UnloadSpec{Query: query, Location: loc, Options: unloadFlags.options}
	if err := spec.Validate(); err != nil {
		return err
	}

	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		runner, err := s.newBulkRunner(ctx, mgr)
		if err != nil {
			return err
		}
		return runner.Unload(ctx, spec)
	})
}

// resolveUnloadQuery returns the inline query, or the rendered query file.
func resolveUnloadQuery(s *session, f bulkFlagValues) (string, error) {
	if f.queryFile == "" {
		return f.query, nil
	}
	path := resolveFilePath(s.cfg, f.queryFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}
	parameters, err := loadMergedParameters(s.cfg, f.params, s.verbose)
	if err != nil {
		return "", err
	}
	query, err := sqltemplate.Render(string(content), parameters)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return strings.TrimRight(strings.TrimSpace(query), ";"), nil
}

func (s *session) newBulkRunner(ctx context.Context, exec whetl.Executor) (*bulk.Runner, error) {
	creds, err := storage.ResolveCredentials(ctx, s.cfg.Storage)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("Storage credentials: %s", creds)
	return bulk.NewRunner(exec, creds, s.logger), nil
}
