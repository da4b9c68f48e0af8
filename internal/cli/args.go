package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireSQLFiles validates that at least one SQL file argument is provided.
// Returns a helpful error message with usage and examples if missing.
func RequireSQLFiles(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <sql_file>

Usage: %s

Example:
  %s extract.sql transform.sql --param day=2024-03-01`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// RequireTableAndLocation validates the <table> <s3://bucket/prefix> pair of copy.
func RequireTableAndLocation(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`missing required argument: <table> <location>

Usage: %s

Example:
  %s staging.events s3://landing/events/2024-03-01/`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
	}
	return nil
}

// RequireStatusAndFiles validates the <status> <file>... arguments of ledger mark.
func RequireStatusAndFiles(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`missing required argument: <status> <file_name>

Usage: %s

Example:
  %s SKIPPED events_2024-03-01.csv --source FYI`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// RequireTables validates that at least one table name is provided.
func RequireTables(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <table>

Usage: %s

Example:
  %s tmp_events tmp_people --schema staging`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}
