package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/upsert"
	"github.com/vvka-141/whetl/pkg/whetl"
)

var upsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Update-then-insert-missing from a source table into a target table",
	Long: `Upsert syncs a target table from a source (staging) table in two
statements: rows whose uniqueness keys match and whose other columns differ
are updated, then source rows without a match are inserted.

The source is first checked for duplicate uniqueness keys; the command stops
with exit code 15 if any are found unless --allow-duplicates is given.

Column functions wrap source values before comparison and write, applied
left to right: --fn name=TRIM,UPPER gives UPPER(TRIM(s.name)). NULLIF_EMPTY
turns empty strings into NULL.

Examples:
  whetl upsert --source staging.people --target public.people \
    --key id --columns id,name,age --fn name=TRIM,UPPER --timestamps`,
	Args: cobra.NoArgs,
	RunE: runUpsert,
}

type upsertFlagValues struct {
	source          string
	target          string
	keys            []string
	columns         []string
	functions       []string
	timestamps      bool
	allowDuplicates bool
	dryRun          bool
}

var upsertFlags upsertFlagValues

func init() {
	rootCmd.AddCommand(upsertCmd)

	upsertCmd.Flags().StringVar(&upsertFlags.source, "source", "", "Source table, e.g. staging.people")
	upsertCmd.Flags().StringVar(&upsertFlags.target, "target", "", "Target table, e.g. public.people")
	upsertCmd.Flags().StringSliceVar(&upsertFlags.keys, "key", nil,
		"Uniqueness key column (can be specified multiple times or comma separated)")
	upsertCmd.Flags().StringSliceVar(&upsertFlags.columns, "columns", nil,
		"Columns shared by source and target, keys included")
	upsertCmd.Flags().StringArrayVar(&upsertFlags.functions, "fn", nil,
		"Column functions as column=F1,F2 (can be specified multiple times)")
	upsertCmd.Flags().BoolVar(&upsertFlags.timestamps, "timestamps", false,
		"Maintain created_at and updated_at on the target")
	upsertCmd.Flags().BoolVar(&upsertFlags.allowDuplicates, "allow-duplicates", false,
		"Skip the duplicate uniqueness key check on the source")
	upsertCmd.Flags().BoolVar(&upsertFlags.dryRun, "dry-run", false,
		"Print the generated statements without connecting")

	_ = upsertCmd.MarkFlagRequired("source")
	_ = upsertCmd.MarkFlagRequired("target")
	_ = upsertCmd.MarkFlagRequired("key")
	_ = upsertCmd.MarkFlagRequired("columns")
	_ = upsertCmd.RegisterFlagCompletionFunc("fn", completeColumnFunctions)
}

// buildUpsertSpec converts the flag values into a validated spec.
func buildUpsertSpec(f upsertFlagValues) (whetl.UpsertSpec, error) {
	fns, err := parseColumnFunctions(f.functions)
	if err != nil {
		return whetl.UpsertSpec{}, err
	}
	spec := whetl.UpsertSpec{
		SourceTable:              f.source,
		TargetTable:              f.target,
		UniquenessKeys:           f.keys,
		Columns:                  f.columns,
		ColumnFunctions:          fns,
		HasTimestamps:            f.timestamps,
		AllowDuplicateSourceKeys: f.allowDuplicates,
	}
	if err := spec.Validate(); err != nil {
		return whetl.UpsertSpec{}, err
	}
	return spec, nil
}

func runUpsert(cmd *cobra.Command, args []string) error {
	spec, err := buildUpsertSpec(upsertFlags)
	if err != nil {
		return err
	}

	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	if upsertFlags.dryRun {
		stmts, err := upsert.Generate(spec, s.conn.Dialect)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !spec.AllowDuplicateSourceKeys {
			fmt.Fprintf(out, "%s;\n\n", stmts.DuplicateCheck)
		}
		fmt.Fprintf(out, "%s;\n\n%s;\n", stmts.Update, stmts.Insert)
		return nil
	}

	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		res, err := upsert.NewRunner(mgr, s.conn.Dialect, s.logger).Run(ctx, spec)
		if err != nil {
			return err
		}
		s.logger.Info("Upserted %s into %s: %d updated, %d inserted", spec.SourceTable, spec.TargetTable, res.Updated, res.Inserted)
		return nil
	})
}
