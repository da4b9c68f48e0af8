package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/whetl/internal/retry"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// AWSIAMConnector authenticates with an IAM token used as the password.
// A fresh token is acquired for every Connect, so lazy reconnects after a
// long idle period do not reuse an expired token.
type AWSIAMConnector struct {
	config        *whetl.ConnectionConfig
	tokenProvider TokenProvider
	logger        whetl.Logger
	retry         *retry.Executor
}

// NewAWSIAMConnector creates a connector. Panics if any dependency is nil.
func NewAWSIAMConnector(config *whetl.ConnectionConfig, tokenProvider TokenProvider, logger whetl.Logger) *AWSIAMConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if tokenProvider == nil {
		panic("tokenProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &AWSIAMConnector{
		config:        config,
		tokenProvider: tokenProvider,
		logger:        logger,
		retry:         newRetryExecutor(config.ConnectRetries, logger),
	}
}

// Connect acquires a token and opens the connection.
func (c *AWSIAMConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire AWS IAM token: %w", whetl.ErrConnectionFailed, err)
	}
	c.logger.Verbose("Acquired token from %s, expires in %v", c.tokenProvider, time.Until(expiresOn).Round(time.Second))

	return connect(ctx, c.config, token, c.retry, c.logger)
}
