package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/whetl/internal/config"
	testhelpers "github.com/vvka-141/whetl/internal/testing"
	"github.com/vvka-141/whetl/pkg/whetl"
)

const testConfig = `warehouse:
  host: cluster.example.com
  port: 5439
  username: etl
  database: analytics
  password: hunter2
  dialect: postgres
  autocommit: false
  connect_retries: 2
  ledger:
    schema: tracking
    suffix: _v2
  params:
    env: production
  timeout: 10m
`

// newSessionCommand builds a command carrying the persistent root flags.
func newSessionCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSessionFlags(cmd.Flags())
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "whetl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))
	return path
}

func clearConnectionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WHETL_CONNECTION_STRING", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PGPASSFILE", filepath.Join(t.TempDir(), "none"))
}

func TestConnectionStringFromEnv(t *testing.T) {
	t.Setenv("WHETL_CONNECTION_STRING", "")
	t.Setenv("DATABASE_URL", "postgresql://fallback/db")
	assert.Equal(t, "postgresql://fallback/db", connectionStringFromEnv())

	t.Setenv("WHETL_CONNECTION_STRING", "postgresql://primary/db")
	assert.Equal(t, "postgresql://primary/db", connectionStringFromEnv())
}

func TestLoadSession_FromConfig(t *testing.T) {
	clearConnectionEnv(t)
	path := writeTestConfig(t)
	cmd := newSessionCommand(t, map[string]string{"config": path, "scope": "warehouse"})

	s, err := loadSession(cmd)
	require.NoError(t, err)

	assert.Equal(t, "cluster.example.com", s.conn.Host)
	assert.Equal(t, 5439, s.conn.Port)
	assert.Equal(t, whetl.DialectPostgres, s.conn.Dialect)
	assert.False(t, s.conn.Autocommit)
	assert.Equal(t, 2, s.conn.ConnectRetries)
	assert.Equal(t, 10*time.Minute, s.timeout)
	assert.Equal(t, "tracking", s.cfg.Ledger.Schema)
}

func TestLoadSession_ConnectionStringOverridesConfig(t *testing.T) {
	clearConnectionEnv(t)
	path := writeTestConfig(t)
	cmd := newSessionCommand(t, map[string]string{
		"config":     path,
		"scope":      "warehouse",
		"connection": "postgresql://loader:pw@other.example.com:5440/staging",
		"timeout":    "30s",
	})

	s, err := loadSession(cmd)
	require.NoError(t, err)

	assert.Equal(t, "other.example.com", s.conn.Host)
	assert.Equal(t, 5440, s.conn.Port)
	assert.Equal(t, "staging", s.conn.Database)
	assert.Equal(t, "loader", s.conn.Username)
	assert.Equal(t, "pw", s.conn.Password)
	assert.Equal(t, whetl.DialectPostgres, s.conn.Dialect, "dialect comes from the config")
	assert.False(t, s.conn.Autocommit)
	assert.Equal(t, 30*time.Second, s.timeout, "--timeout wins over the config")
}

func TestLoadSession_ConnectionStringWithoutConfigFile(t *testing.T) {
	clearConnectionEnv(t)
	t.Setenv("WHETL_CONNECTION_STRING", "postgresql://etl:pw@localhost:5439/dev")
	cmd := newSessionCommand(t, map[string]string{"config": t.TempDir()})

	s, err := loadSession(cmd)
	require.NoError(t, err)

	assert.Equal(t, "localhost", s.conn.Host)
	assert.Equal(t, whetl.DialectRedshift, s.conn.Dialect)
	assert.True(t, s.conn.Autocommit)
	assert.Equal(t, whetl.DefaultLedgerSchema, s.cfg.Ledger.Schema)
	assert.Equal(t, whetl.DefaultCommandTimeout, s.timeout)
}

func TestLoadSession_PasswordFromPgpass(t *testing.T) {
	clearConnectionEnv(t)
	writePgpass(t, "localhost:5439:dev:etl:from-pgpass\n")
	cmd := newSessionCommand(t, map[string]string{
		"config":     t.TempDir(),
		"connection": "postgresql://etl@localhost:5439/dev",
	})

	s, err := loadSession(cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-pgpass", s.conn.Password)
}

func TestLoadSession_Errors(t *testing.T) {
	tests := []struct {
		name  string
		flags func(t *testing.T) map[string]string
	}{
		{
			name: "no config and no connection string",
			flags: func(t *testing.T) map[string]string {
				return map[string]string{"config": t.TempDir()}
			},
		},
		{
			name: "connection string without password",
			flags: func(t *testing.T) map[string]string {
				return map[string]string{"config": t.TempDir(), "connection": "postgresql://etl@localhost/dev"}
			},
		},
		{
			name: "unknown scope",
			flags: func(t *testing.T) map[string]string {
				return map[string]string{"config": writeTestConfig(t), "scope": "missing"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConnectionEnv(t)
			_, err := loadSession(newSessionCommand(t, tt.flags(t)))
			require.Error(t, err)
			assert.ErrorIs(t, err, whetl.ErrInvalidConfig)
			assert.Equal(t, whetl.ExitConfigError, whetl.ExitCodeForError(err))
		})
	}
}

func TestSession_NewLedger(t *testing.T) {
	clearConnectionEnv(t)
	cmd := newSessionCommand(t, map[string]string{"config": writeTestConfig(t), "scope": "warehouse"})
	s, err := loadSession(cmd)
	require.NoError(t, err)

	l, err := s.newLedger(&testhelpers.FakeExecutor{})
	require.NoError(t, err)
	assert.Equal(t, "tracking.imports_v2", l.Table().Name())
}

func TestResolveEffectiveTimeout(t *testing.T) {
	cfg := &config.Config{Timeout: "10m"}

	tests := []struct {
		name    string
		flags   map[string]string
		want    time.Duration
		wantErr bool
	}{
		{name: "config value", flags: nil, want: 10 * time.Minute},
		{name: "flag wins", flags: map[string]string{"timeout": "90s"}, want: 90 * time.Second},
		{name: "zero disables", flags: map[string]string{"timeout": "0"}, want: 0},
		{name: "negative rejected", flags: map[string]string{"timeout": "-1m"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveEffectiveTimeout(newSessionCommand(t, tt.flags), cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, whetl.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandContext(t *testing.T) {
	ctx, cancel := commandContext(0)
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline, "zero timeout installs no deadline")
	assert.NoError(t, ctx.Err())
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	ctx, cancel = commandContext(time.Hour)
	defer cancel()
	deadline, hasDeadline := ctx.Deadline()
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Minute)
}
