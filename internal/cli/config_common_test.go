package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/whetl/internal/config"
	"github.com/vvka-141/whetl/internal/sqltemplate"
)

func TestLoadMergedParameters_Precedence(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.env")
	prod := filepath.Join(dir, "prod.env")
	require.NoError(t, os.WriteFile(base, []byte("env=base\nregion=us-east-1\nday=2024-01-01\n"), 0644))
	require.NoError(t, os.WriteFile(prod, []byte("env=prod\n"), 0644))

	cfg := &config.Config{Params: map[string]string{"env": "config", "owner": "data"}}
	got, err := loadMergedParameters(cfg, paramFlags{
		paramsFiles: []string{base, prod},
		params:      []string{"day=2024-03-01", "list=a,b"},
		raw:         []string{"table=staging.events"},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, sqltemplate.Params{
		"env":    "prod",
		"owner":  "data",
		"region": "us-east-1",
		"day":    "2024-03-01",
		"list":   "a,b",
		"table":  sqltemplate.Raw("staging.events"),
	}, got)
}

func TestLoadMergedParameters_Errors(t *testing.T) {
	cfg := &config.Config{}

	_, err := loadMergedParameters(cfg, paramFlags{params: []string{"novalue"}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--param key=value")

	_, err = loadMergedParameters(cfg, paramFlags{paramsFiles: []string{filepath.Join(t.TempDir(), "missing.env")}}, false)
	require.Error(t, err)
}

func TestResolveFilePath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "whetl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("host: h\ndatabase: d\npassword: p\n"), 0644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	existing := filepath.Join(t.TempDir(), "here.sql")
	require.NoError(t, os.WriteFile(existing, []byte("SELECT 1"), 0644))

	assert.Equal(t, existing, resolveFilePath(cfg, existing))
	assert.Equal(t, filepath.Join(dir, "sql", "load.sql"), resolveFilePath(cfg, filepath.Join("sql", "load.sql")))
}
