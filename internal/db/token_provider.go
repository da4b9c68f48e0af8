package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived passwords for IAM authentication.
type TokenProvider interface {
	// GetToken returns a token usable as the connection password and its expiry.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. Must not include secrets.
	String() string
}
