package sqltemplate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// ErrUnsupportedValue indicates a parameter value with no SQL literal form.
var ErrUnsupportedValue = errors.New("unsupported parameter value")

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// Literal converts v into an SQL literal.
func Literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case Raw:
		return stripQuotes(string(val)), nil
	case whetl.IDSet:
		parts := make([]string, len(val))
		for i, id := range val {
			parts[i] = strconv.FormatInt(id, 10)
		}
		return tuple(parts), nil
	case time.Time:
		return quoteString(formatTime(val)), nil
	case *time.Time:
		if val == nil {
			return "NULL", nil
		}
		return quoteString(formatTime(*val)), nil
	case []byte:
		return "", fmt.Errorf("%w: []byte", ErrUnsupportedValue)
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "NULL", nil
		}
		return quoteString(val.String()), nil
	}

	return reflectLiteral(reflect.ValueOf(v))
}

func reflectLiteral(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL", nil
		}
		return Literal(rv.Elem().Interface())
	case reflect.String:
		return quoteString(rv.String()), nil
	case reflect.Bool:
		if rv.Bool() {
			return "true", nil
		}
		return "false", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: non-finite float %v", ErrUnsupportedValue, f)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			lit, err := Literal(rv.Index(i).Interface())
			if err != nil {
				return "", fmt.Errorf("element %d: %w", i, err)
			}
			parts[i] = lit
		}
		return tuple(parts), nil
	}

	return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, rv.Interface())
}

func quoteString(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	if strings.Contains(escaped, `\`) {
		return "E'" + strings.ReplaceAll(escaped, `\`, `\\`) + "'"
	}
	return "'" + escaped + "'"
}

func formatTime(t time.Time) string {
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(timestampLayout)
}

func tuple(parts []string) string {
	if len(parts) == 0 {
		return "(NULL)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func stripQuotes(s string) string {
	return strings.NewReplacer("'", "", `"`, "").Replace(s)
}
