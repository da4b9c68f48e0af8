package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vvka-141/whetl/internal/logging"
	testhelpers "github.com/vvka-141/whetl/internal/testing"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// compact collapses whitespace so assertions ignore template indentation.
func compact(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

func compactAll(sqls []string) []string {
	out := make([]string, len(sqls))
	for i, s := range sqls {
		out[i] = compact(s)
	}
	return out
}

// queryQueue answers successive queries with the given results.
func queryQueue(t *testing.T, results ...[]map[string]any) func(string) ([]map[string]any, error) {
	return func(sql string) ([]map[string]any, error) {
		if len(results) == 0 {
			t.Fatalf("unexpected query: %s", compact(sql))
		}
		next := results[0]
		results = results[1:]
		return next, nil
	}
}

// idsByFile answers "SELECT id" lookups from a file name to id map.
func idsByFile(ids map[string]int64) func(string) ([]map[string]any, error) {
	return func(sql string) ([]map[string]any, error) {
		for name, id := range ids {
			if strings.Contains(sql, "'"+name+"'") {
				return []map[string]any{{"id": id}}, nil
			}
		}
		return nil, nil
	}
}

func newTestLedger(t *testing.T, exec whetl.Executor, opts ...Option) (*Ledger, *logging.RecordingLogger) {
	t.Helper()
	logger := logging.NewRecordingLogger()
	l, err := New(exec, DefaultTable(), nil, logger, opts...)
	require.NoError(t, err)
	return l, logger
}

var _ whetl.FileExecutor = (*testhelpers.FakeExecutor)(nil)
