package testing

import (
	"context"
	"strings"
	"sync"

	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// FakeExecutor is an in-memory whetl.FileExecutor. It renders every template
// exactly as the real cursor does, records the result, and answers with the
// configured callbacks.
type FakeExecutor struct {
	ExecFunc  func(sql string) (int64, error)
	QueryFunc func(sql string) ([]map[string]any, error)
	FileFunc  func(path string, params map[string]any) (int64, error)

	mu       sync.Mutex
	executed []string
}

func (f *FakeExecutor) Exec(ctx context.Context, sql string, params map[string]any) (int64, error) {
	rendered, err := f.record(sql, params)
	if err != nil {
		return 0, err
	}
	if f.ExecFunc == nil {
		return 0, nil
	}
	return f.ExecFunc(rendered)
}

func (f *FakeExecutor) Query(ctx context.Context, sql string, params map[string]any) ([]map[string]any, error) {
	rendered, err := f.record(sql, params)
	if err != nil {
		return nil, err
	}
	if f.QueryFunc == nil {
		return nil, nil
	}
	return f.QueryFunc(rendered)
}

func (f *FakeExecutor) ExecFile(ctx context.Context, path string, params map[string]any) (int64, error) {
	f.mu.Lock()
	f.executed = append(f.executed, "FILE "+path)
	f.mu.Unlock()
	if f.FileFunc == nil {
		return 0, nil
	}
	return f.FileFunc(path, params)
}

func (f *FakeExecutor) record(sql string, params map[string]any) (string, error) {
	rendered, err := sqltemplate.Render(sql, params)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.executed = append(f.executed, rendered)
	f.mu.Unlock()
	return rendered, nil
}

// Executed returns every rendered statement in order.
func (f *FakeExecutor) Executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed...)
}

// Matching returns the executed statements containing substr.
func (f *FakeExecutor) Matching(substr string) []string {
	var out []string
	for _, s := range f.Executed() {
		if strings.Contains(s, substr) {
			out = append(out, s)
		}
	}
	return out
}

// Reset forgets recorded statements.
func (f *FakeExecutor) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = nil
}

var _ whetl.FileExecutor = (*FakeExecutor)(nil)
