package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// BuildConnectionString renders a postgresql:// URI from config.
func BuildConnectionString(config *whetl.ConnectionConfig) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	if config.SSLMode != "" {
		query.Set("sslmode", config.SSLMode)
	}
	query.Set("application_name", "whetl")
	u.RawQuery = query.Encode()

	return u.String()
}

// ParseConnectionString reads a postgresql:// or postgres:// URI into a
// ConnectionConfig with whetl defaults for everything the URI leaves out.
func ParseConnectionString(connStr string) (*whetl.ConnectionConfig, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme != "postgresql" && u.Scheme != "postgres" {
		return nil, fmt.Errorf("unsupported scheme %q (expected postgresql://): %w", u.Scheme, whetl.ErrInvalidConfig)
	}

	config := &whetl.ConnectionConfig{
		Host:       u.Hostname(),
		Port:       whetl.DefaultPort,
		Database:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:    u.Query().Get("sslmode"),
		Autocommit: whetl.DefaultAutocommit,
		Dialect:    whetl.DialectRedshift,
		AuthMethod: whetl.AuthMethodStandard,
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", p, whetl.ErrInvalidConfig)
		}
		config.Port = port
	}

	if u.User != nil {
		config.Username = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	return config, nil
}
