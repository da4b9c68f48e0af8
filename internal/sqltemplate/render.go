package sqltemplate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// Params maps placeholder names to values.
type Params map[string]any

// Raw is a parameter value inserted into SQL without quoting.
type Raw string

// ErrMalformedPlaceholder indicates a %( sequence that is not a complete %(name)s placeholder.
var ErrMalformedPlaceholder = errors.New("malformed placeholder")

// Render dedents template and substitutes every %(name)s placeholder with the
// escaped literal of params[name].
func Render(template string, params Params) (string, error) {
	src := Dedent(template)

	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '%' || i+1 >= len(src) {
			b.WriteByte(c)
			continue
		}

		switch src[i+1] {
		case '%':
			b.WriteByte('%')
			i++
		case '(':
			end := strings.IndexByte(src[i+2:], ')')
			if end < 0 {
				return "", fmt.Errorf("%w at offset %d: missing ')'", ErrMalformedPlaceholder, i)
			}
			name := src[i+2 : i+2+end]
			next := i + 2 + end + 1
			if next >= len(src) || src[next] != 's' {
				return "", fmt.Errorf("%w %%(%s): only the s conversion is supported", ErrMalformedPlaceholder, name)
			}
			if name == "" {
				return "", fmt.Errorf("%w at offset %d: empty name", ErrMalformedPlaceholder, i)
			}

			value, ok := params[name]
			if !ok {
				return "", &whetl.MissingParameterError{Name: name}
			}
			lit, err := Literal(value)
			if err != nil {
				return "", fmt.Errorf("parameter %q: %w", name, err)
			}
			b.WriteString(lit)
			i = next
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Placeholders returns the distinct placeholder names in template, in order of first use.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i+1 < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if template[i+1] == '%' {
			i++
			continue
		}
		if template[i+1] != '(' {
			continue
		}
		end := strings.IndexByte(template[i+2:], ')')
		if end <= 0 {
			continue
		}
		name := template[i+2 : i+2+end]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i += 2 + end
	}
	return names
}

// Merge returns a new Params holding base overlaid with every map in overrides.
func Merge(base map[string]any, overrides ...map[string]any) Params {
	out := make(Params, len(base))
	for k, v := range base {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Escape doubles every % in sql so Render returns it unchanged (apart from dedenting).
func Escape(sql string) string {
	return strings.ReplaceAll(sql, "%", "%%")
}

// StripQuotes removes single and double quotes, the treatment Raw values receive.
func StripQuotes(s string) string {
	return stripQuotes(s)
}
