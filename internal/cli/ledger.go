package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/ledger"
	"github.com/vvka-141/whetl/internal/storage"
	"github.com/vvka-141/whetl/internal/ui"
	"github.com/vvka-141/whetl/pkg/whetl"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and edit the import ledger",
	Long: `The import ledger is the <schema>.imports<suffix> table recording the
processing status of every ingested file, keyed by (source, file_name).
Its schema and suffix come from the ledger section of the configuration.

Statuses: STARTED, SUCCESS, FAIL, SKIPPED, UNKNOWN. A record can only be
created as STARTED or SKIPPED; any status can be set on an existing one.`,
}

var ledgerStatusCmd = &cobra.Command{
	Use:   "status <file_name>",
	Short: "Show the ledger record of one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerStatus,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger records",
	Example: `  whetl ledger list --source FYI
  whetl ledger list --status FAIL`,
	Args: cobra.NoArgs,
	RunE: runLedgerList,
}

var ledgerMarkCmd = &cobra.Command{
	Use:   "mark <status> <file_name>...",
	Short: "Set the status of files, creating records where allowed",
	Example: `  whetl ledger mark SKIPPED events_2024-03-01.csv --source FYI --date 2024-03-01
  whetl ledger mark SUCCESS a.csv b.csv --source FYI`,
	Args:              RequireStatusAndFiles,
	ValidArgsFunction: completeLedgerMarkArgs,
	RunE:              runLedgerMark,
}

var ledgerPendingCmd = &cobra.Command{
	Use:   "pending [location]",
	Short: "List files in object storage not yet imported successfully",
	Long: `Pending lists the objects under a location (default: the storage bucket
and prefix of the configuration) and prints the names with no SUCCESS or
SKIPPED record for the source.`,
	Example: `  whetl ledger pending s3://landing/fyi/ --source FYI`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runLedgerPending,
}

type ledgerFlagValues struct {
	source string
	status string
	date   string
	path   string
}

var ledgerFlags ledgerFlagValues

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerStatusCmd, ledgerListCmd, ledgerMarkCmd, ledgerPendingCmd)

	ledgerCmd.PersistentFlags().StringVar(&ledgerFlags.source, "source", "", "Data source the files belong to")
	ledgerListCmd.Flags().StringVar(&ledgerFlags.status, "status", "", "Only list records with this status")
	_ = ledgerListCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	ledgerMarkCmd.Flags().StringVar(&ledgerFlags.date, "date", "", "File date (YYYY-MM-DD) stored on newly created records")
	ledgerMarkCmd.Flags().StringVar(&ledgerFlags.path, "path", "", "File path stored on newly created records")

	_ = ledgerStatusCmd.MarkFlagRequired("source")
	_ = ledgerMarkCmd.MarkFlagRequired("source")
	_ = ledgerPendingCmd.MarkFlagRequired("source")
}

func completeLedgerMarkArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeStatuses(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveDefault
}

// withLedger opens the session's connection and ledger.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, s *session, l *ledger.Ledger) error) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	return s.withManager(func(ctx context.Context, mgr *manager.Manager) error {
		l, err := s.newLedger(mgr)
		if err != nil {
			return err
		}
		return fn(ctx, s, l)
	})
}

func runLedgerStatus(cmd *cobra.Command, args []string) error {
	return withLedger(cmd, func(ctx context.Context, s *session, l *ledger.Ledger) error {
		records, err := l.Records(ctx, ledgerFlags.source)
		if err != nil {
			return err
		}
		matched := filterRecords(records, args[0], "")
		if len(matched) == 0 {
			return fmt.Errorf("no ledger record for %s/%s", strings.ToUpper(ledgerFlags.source), args[0])
		}
		printRecords(cmd.OutOrStdout(), matched)
		return nil
	})
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	var status whetl.Status
	if ledgerFlags.status != "" {
		parsed, err := whetl.ParseStatus(ledgerFlags.status)
		if err != nil {
			return err
		}
		status = parsed
	}

	return withLedger(cmd, func(ctx context.Context, s *session, l *ledger.Ledger) error {
		records, err := l.Records(ctx, ledgerFlags.source)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), filterRecords(records, "", status))
		return nil
	})
}

func runLedgerMark(cmd *cobra.Command, args []string) error {
	status, err := whetl.ParseStatus(args[0])
	if err != nil {
		return err
	}
	fileDate, err := parseFileDate(ledgerFlags.date)
	if err != nil {
		return err
	}

	return withLedger(cmd, func(ctx context.Context, s *session, l *ledger.Ledger) error {
		for _, name := range args[1:] {
			id, err := l.LookupOrCreate(ctx, ledger.RecordRequest{
				Source:   ledgerFlags.source,
				FileName: name,
				FileDate: fileDate,
				Status:   status,
				FilePath: ledgerFlags.path,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (id %d)\n",
				ui.SuccessStyle.Render(ui.SymbolCheck), name, ui.StatusStyle(status).Render(string(status)), id)
		}
		return nil
	})
}

func runLedgerPending(cmd *cobra.Command, args []string) error {
	return withLedger(cmd, func(ctx context.Context, s *session, l *ledger.Ledger) error {
		loc := s.cfg.Storage.Base()
		if len(args) == 1 {
			resolved, err := storage.Resolve(loc, args[0])
			if err != nil {
				return err
			}
			loc = resolved
		}

		names, err := listObjectNames(ctx, s, loc)
		if err != nil {
			return err
		}
		pending, err := l.PendingFiles(ctx, ledgerFlags.source, names)
		if err != nil {
			return err
		}
		s.logger.Info("%d of %d file(s) under %s pending for %s", len(pending), len(names), loc, strings.ToUpper(ledgerFlags.source))
		for _, name := range pending {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	})
}

func listObjectNames(ctx context.Context, s *session, loc whetl.Location) ([]string, error) {
	if loc.Bucket == "" {
		return nil, fmt.Errorf("no location given and no storage bucket configured: %w", whetl.ErrInvalidLocation)
	}
	lister, err := storage.NewS3Lister(ctx, s.cfg.Storage)
	if err != nil {
		return nil, err
	}
	return lister.Names(ctx, loc)
}

// parseFileDate parses an optional YYYY-MM-DD date.
func parseFileDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, whetl.ErrInvalidConfig)
	}
	return d, nil
}

// filterRecords keeps records matching fileName and status; empty values match all.
func filterRecords(records []whetl.ImportRecord, fileName string, status whetl.Status) []whetl.ImportRecord {
	var out []whetl.ImportRecord
	for _, r := range records {
		if fileName != "" && r.FileName != fileName {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// printRecords writes one aligned line per record. Padding is applied
// before styling so escape codes do not break alignment.
func printRecords(w io.Writer, records []whetl.ImportRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, ui.MutedStyle.Render("no records"))
		return
	}

	nameWidth := len("FILE")
	for _, r := range records {
		nameWidth = max(nameWidth, len(r.FileName))
	}

	header := fmt.Sprintf("%-8s %-10s %-8s %-*s %-10s %s", "ID", "SOURCE", "STATUS", nameWidth, "FILE", "DATE", "IMPORTED")
	fmt.Fprintln(w, ui.HeaderStyle.Render(header))
	for _, r := range records {
		fmt.Fprintf(w, "%-8d %-10s %s %-*s %-10s %s\n",
			r.ID,
			r.Source,
			ui.StatusStyle(r.Status).Render(fmt.Sprintf("%-8s", r.Status)),
			nameWidth, r.FileName,
			formatDate(r.FileDate),
			formatTimestamp(r.TimeImported),
		)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
