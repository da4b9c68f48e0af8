package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "whetl",
	Short: "Warehouse ETL helper for Redshift and PostgreSQL",
	Long: `whetl runs parameterized SQL against a Postgres-wire warehouse and
implements the usual load patterns on top of one connection:

  run          execute SQL files in order
  copy/unload  bulk transfer between tables and s3://bucket/prefix
  upsert       update-then-insert-missing from a staging table
  ledger       inspect and edit the import ledger
  ingest       run an ingest script and record its outcome per file

Connection settings come from whetl.yaml (see --config and --scope) or from
--connection / $WHETL_CONNECTION_STRING.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration, parameters or specs
  11 - Warehouse connection failed
  12 - User denied a destructive operation
  13 - SQL execution failed
  14 - Ledger state is inconsistent
  15 - Upsert source holds duplicate uniqueness keys`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	addSessionFlags(rootCmd.PersistentFlags())
}

// addSessionFlags defines the flags read by loadSession.
func addSessionFlags(flags *pflag.FlagSet) {
	flags.BoolP("verbose", "v", false, "Enable verbose output (rendered SQL is logged)")
	flags.String("config", ".",
		"Configuration file, or a directory holding whetl.yaml")
	flags.StringSlice("scope", nil,
		"Nested keys selecting the configuration section\n"+
			"Example: --scope warehouse --scope prod")
	flags.String("connection", "",
		"Connection string overriding the configuration file\n"+
			"Alternative: $WHETL_CONNECTION_STRING or $DATABASE_URL\n"+
			"Example: postgresql://etl@cluster.example.com:5439/analytics")
	flags.Duration("timeout", 0,
		"Catastrophic failure protection timeout\n"+
			"Defaults to the timeout key of the configuration, or 4h; 0 disables it")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
