package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/upsert"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// completeStatuses provides shell completion for import status arguments.
func completeStatuses(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, s := range whetl.AllStatuses {
		if strings.HasPrefix(string(s), strings.ToUpper(toComplete)) {
			matches = append(matches, string(s))
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeSQLFiles restricts file completion to .sql files.
func completeSQLFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"sql"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeColumnFunctions provides completion for --fn values of the form column=F1,F2.
func completeColumnFunctions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	col, fns, ok := strings.Cut(toComplete, "=")
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
	done := ""
	last := fns
	if i := strings.LastIndex(fns, ","); i >= 0 {
		done, last = fns[:i+1], fns[i+1:]
	}
	var matches []string
	for _, fn := range upsert.Functions() {
		if strings.HasPrefix(fn, strings.ToUpper(last)) {
			matches = append(matches, col+"="+done+fn)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
