package whetl

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// RowInt64 reads an integer column from a row returned by Executor.Query.
// Integer widths, numerics and decimal strings are accepted.
func RowInt64(row map[string]any, column string) (int64, error) {
	v, ok := row[column]
	if !ok {
		return 0, fmt.Errorf("column %q not in result", column)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int:
		return int64(n), nil
	case pgtype.Numeric:
		if !n.Valid || n.Int == nil {
			return 0, fmt.Errorf("column %q is NULL", column)
		}
		i := new(big.Int).Set(n.Int)
		for e := n.Exp; e > 0; e-- {
			i.Mul(i, big.NewInt(10))
		}
		if n.Exp < 0 {
			i.Quo(i, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil))
		}
		if !i.IsInt64() {
			return 0, fmt.Errorf("column %q value %s overflows int64", column, i)
		}
		return i.Int64(), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case nil:
		return 0, fmt.Errorf("column %q is NULL", column)
	default:
		return 0, fmt.Errorf("column %q has non-integer type %T", column, v)
	}
}

// RowString reads a text column; NULL reads as the empty string.
func RowString(row map[string]any, column string) string {
	switch s := row[column].(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// RowTime reads a date or timestamp column; NULL reads as nil.
func RowTime(row map[string]any, column string) *time.Time {
	if t, ok := row[column].(time.Time); ok {
		return &t
	}
	return nil
}
