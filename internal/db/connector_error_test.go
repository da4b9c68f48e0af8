package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/whetl/pkg/whetl"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name         string
		errMsg       string
		host         string
		port         int
		database     string
		wantContains string
	}{
		{
			name:         "connection refused",
			errMsg:       "dial tcp 127.0.0.1:5439: connection refused",
			host:         "127.0.0.1",
			port:         5439,
			database:     "dw",
			wantContains: "connection refused to 127.0.0.1:5439",
		},
		{
			name:         "actively refused (Windows)",
			errMsg:       "No connection could be made because the target machine actively refused it",
			host:         "127.0.0.1",
			port:         5439,
			database:     "dw",
			wantContains: "connection refused to 127.0.0.1:5439",
		},
		{
			name:         "no such host",
			errMsg:       "dial tcp: lookup cluster.example.com: no such host",
			host:         "cluster.example.com",
			port:         5439,
			database:     "dw",
			wantContains: `cannot resolve host "cluster.example.com"`,
		},
		{
			name:         "password auth failed",
			errMsg:       `password authentication failed for user "etl"`,
			host:         "localhost",
			port:         5432,
			database:     "dw",
			wantContains: `password authentication failed for database "dw"`,
		},
		{
			name:         "database does not exist",
			errMsg:       `database "nope" does not exist`,
			host:         "localhost",
			port:         5432,
			database:     "nope",
			wantContains: `database "nope" does not exist`,
		},
		{
			name:         "timeout",
			errMsg:       "dial tcp 10.0.0.1:5439: i/o timeout",
			host:         "10.0.0.1",
			port:         5439,
			database:     "dw",
			wantContains: "connection timed out to 10.0.0.1:5439",
		},
		{
			name:         "TLS error",
			errMsg:       "tls: handshake failure",
			host:         "localhost",
			port:         5432,
			database:     "dw",
			wantContains: "SSL/TLS connection error",
		},
		{
			name:         "unknown error falls through to default",
			errMsg:       "something completely unexpected happened",
			host:         "localhost",
			port:         5432,
			database:     "dw",
			wantContains: "failed to connect to database",
		},
		{
			name:         "case insensitive matching",
			errMsg:       "CONNECTION REFUSED by firewall",
			host:         "firewall.host",
			port:         5433,
			database:     "dw",
			wantContains: "connection refused to firewall.host:5433",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalErr := errors.New(tt.errMsg)
			wrapped := wrapConnectionError(originalErr, tt.host, tt.port, tt.database)

			if !strings.Contains(wrapped.Error(), tt.wantContains) {
				t.Errorf("wrapConnectionError() = %q, want it to contain %q", wrapped.Error(), tt.wantContains)
			}
			if !errors.Is(wrapped, originalErr) {
				t.Error("wrapped error does not unwrap to original error")
			}
			if !errors.Is(wrapped, whetl.ErrConnectionFailed) {
				t.Error("wrapped error does not chain whetl.ErrConnectionFailed")
			}
		})
	}
}

func TestWrapConnectionError_Canceled(t *testing.T) {
	err := wrapConnectionError(context.Canceled, "h", 1, "d")
	if !errors.Is(err, context.Canceled) || !errors.Is(err, whetl.ErrConnectionFailed) {
		t.Errorf("wrapConnectionError(Canceled) = %v", err)
	}
}
