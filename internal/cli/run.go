package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/pkg/whetl"
)

var runCmd = &cobra.Command{
	Use:   "run <sql_file>...",
	Short: "Execute SQL files in order on one connection",
	Long: `Run renders each SQL file as a template and executes it on a single
warehouse connection, stopping at the first failure. Every file is checked
for unresolved placeholders before the first one runs.

Placeholders use the %(name)s form. Values come from, in increasing
precedence: the params section of the configuration, --params-file,
--param and --raw. A literal percent sign is written as %%.

Examples:
  # Run one file with a date parameter
  whetl run load_day.sql --param day=2024-03-01

  # Run a sequence against the prod scope of etl.yaml
  whetl run extract.sql transform.sql --config etl.yaml --scope warehouse --scope prod

  # Insert a table name verbatim
  whetl run count.sql --raw table=staging.events`,
	Args:              RequireSQLFiles,
	ValidArgsFunction: completeSQLFiles,
	RunE:              runRun,
}

var runFlags paramFlags

func init() {
	rootCmd.AddCommand(runCmd)
	addParamFlags(runCmd, &runFlags)
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	parameters, err := loadMergedParameters(s.cfg, runFlags, s.verbose)
	if err != nil {
		return err
	}

	files := make([]string, len(args))
	for i, a := range args {
		files[i] = resolveFilePath(s.cfg, a)
	}
	if err := verifyParameters(files, parameters); err != nil {
		return err
	}

	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		return executeFiles(ctx, mgr, files, parameters, s.logger)
	})
}

// verifyParameters fails when any file references a placeholder missing
// from params, so a sequence never stops halfway on a typo.
func verifyParameters(files []string, params map[string]any) error {
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read SQL file %s: %w", f, err)
		}
		for _, name := range sqltemplate.Placeholders(string(content)) {
			if _, ok := params[name]; !ok {
				return fmt.Errorf("%s: %w", f, &whetl.MissingParameterError{Name: name})
			}
		}
	}
	return nil
}

// executeFiles runs files in order and stops at the first error. Errors
// from the executor already name the file.
func executeFiles(ctx context.Context, exec whetl.FileExecutor, files []string, params map[string]any, logger whetl.Logger) error {
	for i, f := range files {
		start := time.Now()
		logger.Info("[%d/%d] Running %s", i+1, len(files), f)
		affected, err := exec.ExecFile(ctx, f, params)
		if err != nil {
			return err
		}
		logger.Verbose("%s finished in %s (%d rows affected)", f, time.Since(start).Round(time.Millisecond), affected)
	}
	return nil
}
