package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/whetl/internal/config"
	"github.com/vvka-141/whetl/internal/db"
	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/ledger"
	"github.com/vvka-141/whetl/internal/logging"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// connectionStringFromEnv returns the first non-empty connection string from
// WHETL_CONNECTION_STRING or DATABASE_URL environment variables.
func connectionStringFromEnv() string {
	if s := os.Getenv("WHETL_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// session is what every warehouse command needs before it can open a
// connection: the configuration scope, the resolved connection and a logger.
type session struct {
	cfg     *config.Config
	conn    *whetl.ConnectionConfig
	logger  whetl.Logger
	verbose bool
	timeout time.Duration
}

// loadSession resolves configuration from the persistent flags.
// A connection string (flag or environment) makes the configuration file
// optional; its connection keys are then ignored.
func loadSession(cmd *cobra.Command) (*session, error) {
	verbose := getVerboseFlag(cmd)
	configPath, _ := cmd.Flags().GetString("config")
	scope, _ := cmd.Flags().GetStringSlice("scope")
	connStr, _ := cmd.Flags().GetString("connection")
	if connStr == "" {
		connStr = connectionStringFromEnv()
	}

	cfg, err := loadConfig(configPath, scope, connStr != "")
	if err != nil {
		return nil, err
	}

	conn, err := resolveConnection(connStr, cfg)
	if err != nil {
		return nil, err
	}

	timeout, err := resolveEffectiveTimeout(cmd, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		conn:    conn,
		logger:  logging.NewConsoleLogger(verbose),
		verbose: verbose,
		timeout: timeout,
	}
	if verbose {
		logConnectionVerbose(conn)
	}
	return s, nil
}

// loadConfig loads the configured scope. When the connection comes from a
// connection string a missing file yields an empty configuration.
func loadConfig(path string, scope []string, haveConnString bool) (*config.Config, error) {
	cfg, err := config.Load(path, scope...)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		if haveConnString {
			return &config.Config{Ledger: config.LedgerConfig{Schema: whetl.DefaultLedgerSchema}}, nil
		}
		return nil, fmt.Errorf("no configuration found at %s and no connection string given\n"+
			"Provide via:\n"+
			"  1. --config path/to/whetl.yaml [--scope warehouse]\n"+
			"  2. --connection postgresql://user@host:5439/db\n"+
			"  3. Environment variable: export WHETL_CONNECTION_STRING=...: %w",
			path, whetl.ErrInvalidConfig)
	}
	return nil, fmt.Errorf("failed to load configuration: %w", err)
}

// resolveConnection builds the connection from connStr when set, keeping the
// dialect, autocommit and retry settings of cfg. A connection string without
// a password falls back to the pgpass file.
func resolveConnection(connStr string, cfg *config.Config) (*whetl.ConnectionConfig, error) {
	fromCfg, err := cfg.ToConnectionConfig()
	if err != nil {
		return nil, err
	}
	if connStr == "" {
		return fromCfg, nil
	}

	conn, err := db.ParseConnectionString(connStr)
	if err != nil {
		return nil, err
	}
	conn.Dialect = fromCfg.Dialect
	conn.Autocommit = fromCfg.Autocommit
	conn.ConnectRetries = fromCfg.ConnectRetries
	if cfg.Connection.AuthMethod != "" {
		conn.AuthMethod = fromCfg.AuthMethod
		conn.AWSRegion = fromCfg.AWSRegion
	}
	if conn.Password == "" && conn.AuthMethod == whetl.AuthMethodStandard {
		conn.Password = lookupPgpass(conn)
	}

	if err := conn.Validate(); err != nil {
		return nil, err
	}
	return conn, nil
}

// resolveEffectiveTimeout returns the --timeout flag when set, the
// configuration's timeout key otherwise. Zero means no timeout.
func resolveEffectiveTimeout(cmd *cobra.Command, cfg *config.Config) (time.Duration, error) {
	if !cmd.Flags().Changed("timeout") {
		return cfg.CommandTimeout()
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return 0, err
	}
	if timeout < 0 {
		return 0, fmt.Errorf("invalid --timeout %s: must not be negative: %w", timeout, whetl.ErrInvalidConfig)
	}
	return timeout, nil
}

// openManager creates a Manager for the session's connection.
func (s *session) openManager() (*manager.Manager, error) {
	connector, err := db.NewConnector(s.conn, s.logger)
	if err != nil {
		return nil, err
	}
	return manager.New(connector, s.logger, manager.WithAutocommit(s.conn.Autocommit)), nil
}

// withManager runs fn with a connected Manager under the session's timeout
// and interrupt handling, closing the connection afterwards.
func (s *session) withManager(fn func(ctx context.Context, mgr *manager.Manager) error) error {
	mgr, err := s.openManager()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(s.timeout)
	defer cancel()
	defer func() {
		if cerr := mgr.Close(context.WithoutCancel(ctx)); cerr != nil {
			s.logger.Error("Failed to close connection: %v", cerr)
		}
	}()

	if err := mgr.Connect(ctx); err != nil {
		return err
	}
	return fn(ctx, mgr)
}

// newLedger builds the ledger for the session's ledger section.
func (s *session) newLedger(exec whetl.Executor) (*ledger.Ledger, error) {
	table := ledger.Table{Schema: s.cfg.Ledger.Schema, Suffix: s.cfg.Ledger.Suffix}
	if table.Schema == "" {
		table = ledger.DefaultTable()
	}
	return ledger.New(exec, table, ledger.NewCache(), s.logger, ledger.WithDialect(s.conn.Dialect))
}

// commandContext installs the catastrophic timeout, when positive, and
// cancels on SIGINT/SIGTERM.
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(conn *whetl.ConnectionConfig) {
	fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
	fmt.Fprintf(os.Stderr, "  Host: %s\n", conn.Host)
	fmt.Fprintf(os.Stderr, "  Port: %d\n", conn.Port)
	fmt.Fprintf(os.Stderr, "  User: %s\n", conn.Username)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", conn.Database)
	fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", conn.SSLMode)
	fmt.Fprintf(os.Stderr, "  Dialect: %s\n", conn.Dialect)
	fmt.Fprintf(os.Stderr, "  Autocommit: %t\n", conn.Autocommit)
	fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", conn.AuthMethod)
}
