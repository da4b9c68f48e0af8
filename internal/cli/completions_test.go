package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteStatuses(t *testing.T) {
	cmd := &cobra.Command{}

	t.Run("returns all statuses for empty input", func(t *testing.T) {
		completions, directive := completeStatuses(cmd, nil, "")
		if len(completions) != 5 {
			t.Errorf("expected 5 completions, got %d", len(completions))
		}
		if directive != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
		}
	})

	t.Run("filters by prefix case-insensitively", func(t *testing.T) {
		completions, _ := completeStatuses(cmd, nil, "s")
		if len(completions) != 3 {
			t.Fatalf("expected 3 completions (STARTED, SUCCESS, SKIPPED), got %v", completions)
		}
		for _, c := range completions {
			if c != "STARTED" && c != "SUCCESS" && c != "SKIPPED" {
				t.Errorf("unexpected completion: %s", c)
			}
		}
	})
}

func TestCompleteSQLFiles(t *testing.T) {
	exts, directive := completeSQLFiles(&cobra.Command{}, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("expected ShellCompDirectiveFilterFileExt, got %v", directive)
	}
	if len(exts) != 1 || exts[0] != "sql" {
		t.Errorf("expected [sql], got %v", exts)
	}
}

func TestCompleteColumnFunctions(t *testing.T) {
	cmd := &cobra.Command{}

	t.Run("waits for the column name", func(t *testing.T) {
		completions, directive := completeColumnFunctions(cmd, nil, "nam")
		if len(completions) != 0 {
			t.Errorf("expected no completions, got %v", completions)
		}
		if directive&cobra.ShellCompDirectiveNoSpace == 0 {
			t.Errorf("expected NoSpace directive, got %v", directive)
		}
	})

	t.Run("completes the first function", func(t *testing.T) {
		completions, _ := completeColumnFunctions(cmd, nil, "name=up")
		if len(completions) != 1 || completions[0] != "name=UPPER" {
			t.Errorf("expected [name=UPPER], got %v", completions)
		}
	})

	t.Run("keeps earlier functions", func(t *testing.T) {
		completions, _ := completeColumnFunctions(cmd, nil, "name=TRIM,LO")
		if len(completions) != 1 || completions[0] != "name=TRIM,LOWER" {
			t.Errorf("expected [name=TRIM,LOWER], got %v", completions)
		}
	})
}
