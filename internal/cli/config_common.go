package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/config"
	"github.com/vvka-141/whetl/internal/params"
	"github.com/vvka-141/whetl/internal/sqltemplate"
)

// paramFlags holds the template parameter flags shared by run and ingest.
type paramFlags struct {
	params      []string
	paramsFiles []string
	raw         []string
}

func addParamFlags(cmd *cobra.Command, f *paramFlags) {
	cmd.Flags().StringArrayVar(&f.params, "param", nil,
		"Template parameters as key=value pairs (can be specified multiple times)\n"+
			"Rendered as quoted SQL literals into %(key)s placeholders\n"+
			"Example: --param day=2024-03-01 --param source=FYI")
	cmd.Flags().StringSliceVar(&f.paramsFiles, "params-file", nil,
		"Load parameters from .env files (can be specified multiple times)\n"+
			"Later files override earlier ones, --param overrides all")
	cmd.Flags().StringArrayVar(&f.raw, "raw", nil,
		"Raw SQL fragments as key=value pairs, inserted without quoting\n"+
			"Quote characters are stripped; never pass untrusted input\n"+
			"Example: --raw table=staging.events")
}

// loadMergedParameters loads and merges parameters from all sources.
// Priority (highest to lowest): --raw > --param > params files > config params
func loadMergedParameters(cfg *config.Config, f paramFlags, verbose bool) (sqltemplate.Params, error) {
	files := make([]string, len(f.paramsFiles))
	for i, p := range f.paramsFiles {
		files[i] = resolveFilePath(cfg, p)
		if verbose {
			fmt.Fprintf(os.Stderr, "[VERBOSE] Loading parameters from file: %s\n", files[i])
		}
	}

	merged, err := params.Build(params.Sources{
		Config: cfg.Params,
		Files:  files,
		Pairs:  f.params,
		Raw:    f.raw,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w\n\nTip: use --param key=value, or KEY=VALUE lines in --params-file", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] %d template parameter(s) resolved\n", len(merged))
	}
	return merged, nil
}

// resolveFilePath keeps paths that exist relative to the working directory
// and resolves the rest against the configuration file's directory.
func resolveFilePath(cfg *config.Config, path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return cfg.ResolvePath(path)
}

// parseColumnFunctions parses --fn values of the form column=F1,F2.
func parseColumnFunctions(values []string) (map[string][]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(values))
	for _, v := range values {
		col, fns, ok := strings.Cut(v, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" || strings.TrimSpace(fns) == "" {
			return nil, fmt.Errorf("column function %q is not in column=F1,F2 format (example: --fn name=TRIM,UPPER)", v)
		}
		for _, fn := range strings.Split(fns, ",") {
			if fn = strings.TrimSpace(fn); fn != "" {
				out[col] = append(out[col], fn)
			}
		}
	}
	return out, nil
}
