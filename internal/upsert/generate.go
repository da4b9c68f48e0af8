package upsert

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// sourceAlias is the alias given to the source table in every statement.
const sourceAlias = "s"

// nullIfEmpty is a pseudo-function turning empty strings into NULL.
const nullIfEmpty = "NULLIF_EMPTY"

// allowedFunctions lists the SQL functions that may wrap a column.
var allowedFunctions = map[string]bool{
	"TRIM":      true,
	"LTRIM":     true,
	"RTRIM":     true,
	"BTRIM":     true,
	"UPPER":     true,
	"LOWER":     true,
	"INITCAP":   true,
	"MD5":       true,
	"ABS":       true,
	"CEIL":      true,
	"FLOOR":     true,
	"ROUND":     true,
	"TRUNC":     true,
	"DATE":      true,
	nullIfEmpty: true,
}

// Functions returns the allowed column function names in sorted order.
func Functions() []string {
	return slices.Sorted(maps.Keys(allowedFunctions))
}

// Statements holds the SQL generated for one upsert.
type Statements struct {
	// Update rewrites target rows that match on keys but differ elsewhere.
	Update string
	// Insert adds source rows whose keys are missing from the target.
	Insert string
	// DuplicateCheck counts keys carried by more than one distinct source row.
	DuplicateCheck string
}

// Generate builds the upsert statements for spec.
func Generate(spec whetl.UpsertSpec, dialect whetl.Dialect) (Statements, error) {
	if err := spec.Validate(); err != nil {
		return Statements{}, err
	}

	fns, err := normalizeFunctions(spec.ColumnFunctions)
	if err != nil {
		return Statements{}, err
	}

	g := &generator{
		source:  sqltemplate.StripQuotes(spec.SourceTable),
		target:  sqltemplate.StripQuotes(spec.TargetTable),
		keys:    stripAll(spec.UniquenessKeys),
		columns: stripAll(spec.Columns),
		nonKeys: stripAll(spec.NonKeyColumns()),
		fns:     fns,
		now:     dialect.Now(),
		stamps:  spec.HasTimestamps,
	}

	return Statements{
		Update:         g.update(),
		Insert:         g.insert(),
		DuplicateCheck: g.duplicateCheck(),
	}, nil
}

type generator struct {
	source, target string
	keys           []string
	columns        []string
	nonKeys        []string
	fns            map[string][]string
	now            string
	stamps         bool
}

func (g *generator) targetCol(col string) string {
	return g.apply(col, g.target+"."+col)
}

func (g *generator) sourceCol(col string) string {
	return g.apply(col, sourceAlias+"."+col)
}

// apply wraps expr in the functions configured for col, innermost first.
func (g *generator) apply(col, expr string) string {
	for _, fn := range g.fns[col] {
		if fn == nullIfEmpty {
			expr = fmt.Sprintf("NULLIF(%s, '')", expr)
			continue
		}
		expr = fmt.Sprintf("%s(%s)", fn, expr)
	}
	return expr
}

// nullSafeEqual compares two expressions treating two NULLs as equal.
func nullSafeEqual(t, s string) string {
	return fmt.Sprintf("(%s = %s OR (%s IS NULL AND %s IS NULL))", t, s, t, s)
}

// uniquePredicate matches target and source rows on every uniqueness key.
// NULL keys match each other, so a NULL-keyed source row is inserted once.
func (g *generator) uniquePredicate() string {
	preds := make([]string, len(g.keys))
	for i, k := range g.keys {
		preds[i] = nullSafeEqual(g.targetCol(k), g.sourceCol(k))
	}
	return strings.Join(preds, "\n    AND ")
}

// identicalPredicate is true when every non-key column already matches,
// treating two NULLs as equal.
func (g *generator) identicalPredicate() string {
	if len(g.nonKeys) == 0 {
		return "TRUE"
	}
	preds := make([]string, len(g.nonKeys))
	for i, c := range g.nonKeys {
		preds[i] = nullSafeEqual(g.targetCol(c), g.sourceCol(c))
	}
	return strings.Join(preds, "\n    AND ")
}

func (g *generator) update() string {
	clauses := make([]string, 0, len(g.columns)+1)
	for _, c := range g.columns {
		clauses = append(clauses, fmt.Sprintf("%s = %s", c, g.sourceCol(c)))
	}
	if g.stamps {
		clauses = append(clauses, "updated_at = "+g.now)
	}

	return fmt.Sprintf(`UPDATE %s
SET %s
FROM %s %s
WHERE (%s)
    AND NOT (%s)`,
		g.target, strings.Join(clauses, ", "), g.source, sourceAlias,
		g.uniquePredicate(), g.identicalPredicate())
}

func (g *generator) insert() string {
	targetCols := append([]string(nil), g.columns...)
	sourceCols := make([]string, 0, len(g.columns)+2)
	for _, c := range g.columns {
		sourceCols = append(sourceCols, g.sourceCol(c))
	}
	if g.stamps {
		targetCols = append(targetCols, "created_at", "updated_at")
		sourceCols = append(sourceCols, g.now, g.now)
	}

	return fmt.Sprintf(`INSERT INTO %s (%s)
SELECT DISTINCT %s
FROM %s %s
WHERE NOT EXISTS (
    SELECT 1 FROM %s
    WHERE %s
)`,
		g.target, strings.Join(targetCols, ", "),
		strings.Join(sourceCols, ", "),
		g.source, sourceAlias,
		g.target, g.uniquePredicate())
}

func (g *generator) duplicateCheck() string {
	selected := make([]string, len(g.columns))
	for i, c := range g.columns {
		selected[i] = fmt.Sprintf("%s AS %s", g.sourceCol(c), c)
	}
	groupBy := make([]string, len(g.keys))
	for i, k := range g.keys {
		groupBy[i] = "d." + k
	}

	return fmt.Sprintf(`SELECT COUNT(*) AS duplicate_keys
FROM (
    SELECT 1
    FROM (SELECT DISTINCT %s FROM %s %s) d
    GROUP BY %s
    HAVING COUNT(*) > 1
) dup`,
		strings.Join(selected, ", "), g.source, sourceAlias, strings.Join(groupBy, ", "))
}

// normalizeFunctions upper-cases function names and rejects any outside the allow-list.
func normalizeFunctions(in map[string][]string) (map[string][]string, error) {
	out := make(map[string][]string, len(in))
	for col, fns := range in {
		col = sqltemplate.StripQuotes(col)
		for _, fn := range fns {
			name := strings.ToUpper(strings.TrimSpace(fn))
			if !allowedFunctions[name] {
				return nil, &whetl.UnknownFunctionError{Column: col, Function: fn}
			}
			out[col] = append(out[col], name)
		}
	}
	return out, nil
}

func stripAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = sqltemplate.StripQuotes(n)
	}
	return out
}
