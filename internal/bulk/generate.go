package bulk

import (
	"strings"

	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/internal/storage"
	"github.com/vvka-141/whetl/pkg/whetl"
)

const (
	loadTemplate   = "COPY %(table)s%(columns)s FROM %(path)s CREDENTIALS %(credentials)s"
	unloadTemplate = "UNLOAD (%(query)s) TO %(path)s CREDENTIALS %(credentials)s"
)

// GenerateLoad renders the COPY statement for spec.
func GenerateLoad(spec whetl.LoadSpec, creds storage.Credentials) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	clause, err := creds.Clause()
	if err != nil {
		return "", err
	}

	columns := ""
	if len(spec.Columns) > 0 {
		columns = " (" + strings.Join(spec.Columns, ", ") + ")"
	}

	return sqltemplate.Render(withOptions(loadTemplate, spec.Options), sqltemplate.Params{
		"table":       sqltemplate.Raw(spec.Table),
		"columns":     sqltemplate.Raw(columns),
		"path":        spec.Location.String(),
		"credentials": clause,
	})
}

// GenerateUnload renders the UNLOAD statement for spec. The query is quoted
// as a string literal.
func GenerateUnload(spec whetl.UnloadSpec, creds storage.Credentials) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	clause, err := creds.Clause()
	if err != nil {
		return "", err
	}

	return sqltemplate.Render(withOptions(unloadTemplate, spec.Options), sqltemplate.Params{
		"query":       strings.TrimSpace(sqltemplate.Dedent(spec.Query)),
		"path":        spec.Location.String(),
		"credentials": clause,
	})
}

func withOptions(tmpl string, options []string) string {
	var b strings.Builder
	b.WriteString(tmpl)
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(sqltemplate.Escape(opt))
	}
	return b.String()
}
