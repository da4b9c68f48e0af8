// Package sqltemplate renders SQL text containing %(name)s placeholders.
//
// Every placeholder is replaced with an escaped SQL literal built from the
// parameter value:
//
//	nil                  NULL
//	string kinds         'text' (quotes doubled, E'...' when a backslash is present)
//	integer/float kinds  verbatim
//	bool                 true / false
//	time.Time            '2006-01-02 15:04:05' ('2006-01-02' at midnight)
//	slices, whetl.IDSet  (a, b, c), or (NULL) when empty
//	fmt.Stringer         quoted String()
//	Raw                  inserted verbatim after stripping ' and "
//
// A literal percent sign is written as %%. A lone % that does not start a
// placeholder is left untouched so LIKE patterns survive.
//
// Raw exists so table and schema names can be parameterized. Stripping quotes
// does not make arbitrary input safe: only pass Raw values that come from
// trusted configuration.
//
// Templates are dedented before substitution so SQL can be indented freely
// inside Go raw strings and files.
package sqltemplate
