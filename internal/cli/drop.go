package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/ui"
	"github.com/vvka-141/whetl/pkg/whetl"
)

var dropTablesCmd = &cobra.Command{
	Use:   "drop-tables <table>...",
	Short: "Drop tables in one schema after confirmation",
	Long: `Drop-tables drops each named table in --schema on one connection.

Interactive terminals are asked to type the drop target back. With --force
a countdown is shown instead, for CI/CD pipelines. Without a terminal and
without --force the command refuses to run.

Examples:
  whetl drop-tables tmp_events tmp_people --schema staging
  whetl drop-tables tmp_events --schema staging --if-exists --force`,
	Args: RequireTables,
	RunE: runDropTables,
}

type dropFlagValues struct {
	schema   string
	ifExists bool
	force    bool
}

var dropFlags dropFlagValues

func init() {
	rootCmd.AddCommand(dropTablesCmd)

	dropTablesCmd.Flags().StringVar(&dropFlags.schema, "schema", "", "Schema holding the tables")
	dropTablesCmd.Flags().BoolVar(&dropFlags.ifExists, "if-exists", false, "Ignore tables that do not exist")
	dropTablesCmd.Flags().BoolVar(&dropFlags.force, "force", false,
		"Skip the interactive prompt and approve after a countdown")
	_ = dropTablesCmd.MarkFlagRequired("schema")
}

// selectApprover picks the approval flow for the current terminal.
func selectApprover(force, interactive, verbose bool) (whetl.Approver, error) {
	if force {
		return ui.NewForcedApprover(verbose), nil
	}
	if !interactive {
		return nil, fmt.Errorf("drop-tables needs an interactive terminal or --force: %w", whetl.ErrApprovalDenied)
	}
	return ui.NewInteractiveApprover(verbose), nil
}

// dropTarget names the tables as shown in the confirmation prompt.
func dropTarget(schema string, tables []string) string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = strings.ToLower(schema + "." + t)
	}
	return strings.Join(names, ", ")
}

func runDropTables(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	approver, err := selectApprover(dropFlags.force, ui.IsInteractive(), s.verbose)
	if err != nil {
		return err
	}

	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		return dropTables(ctx, mgr, approver, dropFlags.schema, args, dropFlags.ifExists, s.logger)
	})
}

// dropTablesExecutor is the part of the Manager used by dropTables.
type dropTablesExecutor interface {
	DropTables(ctx context.Context, schema string, tables []string, ifExists bool) (int, error)
}

func dropTables(ctx context.Context, exec dropTablesExecutor, approver whetl.Approver, schema string, tables []string, ifExists bool, logger whetl.Logger) error {
	approved, err := approver.RequestApproval(ctx, dropTarget(schema, tables))
	if err != nil {
		return err
	}
	if !approved {
		return whetl.ErrApprovalDenied
	}

	n, err := exec.DropTables(ctx, schema, tables, ifExists)
	if err != nil {
		return err
	}
	logger.Info("Dropped %d of %d table(s) in %s", n, len(tables), schema)
	return nil
}
