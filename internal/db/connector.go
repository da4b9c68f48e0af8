package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/whetl/internal/retry"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// StandardConnector opens a single warehouse connection with username and
// password authentication. When config.ConnectRetries is positive, transient
// failures of the initial connect are retried with exponential backoff.
type StandardConnector struct {
	config *whetl.ConnectionConfig
	logger whetl.Logger
	retry  *retry.Executor
}

// NewStandardConnector creates a connector for config.
// Panics if config or logger is nil.
func NewStandardConnector(config *whetl.ConnectionConfig, logger whetl.Logger) *StandardConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{
		config: config,
		logger: logger,
		retry:  newRetryExecutor(config.ConnectRetries, logger),
	}
}

// Connect opens the connection.
func (c *StandardConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	return connect(ctx, c.config, c.config.Password, c.retry, c.logger)
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *whetl.ConnectionConfig, logger whetl.Logger) (whetl.Connector, error) {
	switch config.AuthMethod {
	case whetl.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case whetl.AuthMethodAWSIAM:
		endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)
		provider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
		}
		return NewAWSIAMConnector(config, provider, logger), nil
	default:
		return nil, fmt.Errorf("auth method %v: %w", config.AuthMethod, whetl.ErrUnsupportedAuthMethod)
	}
}

func newRetryExecutor(retries int, logger whetl.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(retries,
		retry.WithInitialDelay(whetl.DefaultRetryInitialDelay),
		retry.WithMaxDelay(whetl.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewConnectErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Info("Connection attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
		})
}

// connect dials once through executor, using password for authentication.
func connect(ctx context.Context, config *whetl.ConnectionConfig, password string, executor *retry.Executor, logger whetl.Logger) (*pgx.Conn, error) {
	authed := *config
	authed.Password = password

	connConfig, err := pgx.ParseConfig(BuildConnectionString(&authed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Info("%s: %s", notice.Severity, notice.Message)
	}

	var conn *pgx.Conn
	err = executor.Execute(ctx, func(ctx context.Context) error {
		var err error
		conn, err = pgx.ConnectConfig(ctx, connConfig)
		return err
	})
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	logger.Verbose("Connected to %s:%d/%s as %s", config.Host, config.Port, config.Database, config.Username)
	return conn, nil
}

// wrapConnectionError adds guidance to raw connection errors. The result
// matches both the original error and whetl.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", whetl.ErrConnectionFailed, err)
	}

	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - The warehouse is not running or paused
  - Wrong host or port (Redshift listens on 5439 by default)
  - Security group or firewall blocking the connection

Original error: %w`, whetl.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - Cluster endpoint changed after a restore or resize
  - VPN or DNS not reachable

Original error: %w`, whetl.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: password authentication failed for database "%s"

Possible causes:
  - Wrong password (check the ${VAR} it expands from)
  - Wrong username
  - IAM token expired (auth_method: aws_iam)

Original error: %w`, whetl.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database "%s" does not exist

Original error: %w`, whetl.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: connection timed out to %s

Possible causes:
  - Cluster is overloaded or resuming
  - Firewall silently dropping packets
  - Wrong host/port

Original error: %w`, whetl.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error

Possible causes:
  - Server requires SSL but sslmode disables it
  - Certificate verification failed (try sslmode: require)

Original error: %w`, whetl.ErrConnectionFailed, err)

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", whetl.ErrConnectionFailed, err)
	}
}
