package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/whetl/internal/storage"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up when Load is given a directory.
const ConfigFileName = "whetl.yaml"

// EnvFileName is loaded from the config file's directory before expansion.
const EnvFileName = ".env"

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	Autocommit     *bool  `yaml:"autocommit"`
	SSLMode        string `yaml:"sslmode"`
	Dialect        string `yaml:"dialect"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	ConnectRetries int    `yaml:"connect_retries"`
}

type LedgerConfig struct {
	Schema string `yaml:"schema"`
	Suffix string `yaml:"suffix"`
}

// Config is one scope of the configuration file.
type Config struct {
	Connection ConnectionConfig  `yaml:",inline"`
	Storage    storage.Config    `yaml:"storage"`
	Ledger     LedgerConfig      `yaml:"ledger"`
	Params     map[string]string `yaml:"params"`
	Timeout    string            `yaml:"timeout"`

	path string
}

// Load reads the configuration at path (a file, or a directory holding
// whetl.yaml) and decodes the mapping found under the scope keys, e.g.
// Load("etl.yaml", "warehouse", "prod"). ${VAR} references in values are
// expanded after .env beside the file has been loaded.
func Load(path string, scope ...string) (*Config, error) {
	configPath, err := locate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	if err := loadEnvFile(filepath.Join(filepath.Dir(configPath), EnvFileName)); err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	cfg := &Config{path: configPath}
	node, err := walkScope(&root, scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	if node != nil {
		expandNode(node)
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", configPath, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

func locate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrConfigNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(path, ConfigFileName), nil
	}
	return path, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// walkScope descends through nested mappings by key. A nil node means the
// document is empty.
func walkScope(root *yaml.Node, scope []string) (*yaml.Node, error) {
	if root.Kind == 0 || len(root.Content) == 0 {
		if len(scope) > 0 {
			return nil, fmt.Errorf("scope %q not found: %w", strings.Join(scope, "."), whetl.ErrInvalidConfig)
		}
		return nil, nil
	}

	node := root
	if node.Kind == yaml.DocumentNode {
		node = node.Content[0]
	}

	for i, key := range scope {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("scope %q is not a mapping: %w", strings.Join(scope[:i], "."), whetl.ErrInvalidConfig)
		}
		var next *yaml.Node
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == key {
				next = node.Content[j+1]
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("scope %q not found: %w", strings.Join(scope[:i+1], "."), whetl.ErrInvalidConfig)
		}
		node = next
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("scope %q is not a mapping: %w", strings.Join(scope, "."), whetl.ErrInvalidConfig)
	}
	return node, nil
}

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandNode replaces ${VAR} in every scalar. A bare $ is left alone so
// passwords containing dollar signs survive.
func expandNode(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		n.Value = envReference.ReplaceAllStringFunc(n.Value, func(ref string) string {
			return os.Getenv(ref[2 : len(ref)-1])
		})
		return
	}
	for _, child := range n.Content {
		expandNode(child)
	}
}

func (c *Config) applyDefaults() {
	if c.Connection.Port == 0 {
		c.Connection.Port = whetl.DefaultPort
	}
	if c.Connection.Autocommit == nil {
		autocommit := whetl.DefaultAutocommit
		c.Connection.Autocommit = &autocommit
	}
	if c.Ledger.Schema == "" {
		c.Ledger.Schema = whetl.DefaultLedgerSchema
	}
}

// Validate reports every missing required key at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Connection.Host == "" {
		missing = append(missing, "host")
	}
	if c.Connection.Database == "" {
		missing = append(missing, "database")
	}
	auth, err := whetl.ParseAuthMethod(c.Connection.AuthMethod)
	if err != nil {
		return err
	}
	if auth == whetl.AuthMethodStandard && c.Connection.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required key(s): %s: %w", strings.Join(missing, ", "), whetl.ErrInvalidConfig)
	}
	dialect, err := whetl.ParseDialect(c.Connection.Dialect)
	if err != nil {
		return err
	}
	if auth == whetl.AuthMethodAWSIAM && dialect != whetl.DialectPostgres {
		return fmt.Errorf("auth_method aws_iam issues RDS tokens and requires dialect postgres: %w", whetl.ErrUnsupportedAuthMethod)
	}
	return nil
}

// ToConnectionConfig converts the connection keys for the connector.
func (c *Config) ToConnectionConfig() (*whetl.ConnectionConfig, error) {
	dialect, err := whetl.ParseDialect(c.Connection.Dialect)
	if err != nil {
		return nil, err
	}
	auth, err := whetl.ParseAuthMethod(c.Connection.AuthMethod)
	if err != nil {
		return nil, err
	}

	autocommit := whetl.DefaultAutocommit
	if c.Connection.Autocommit != nil {
		autocommit = *c.Connection.Autocommit
	}
	port := c.Connection.Port
	if port == 0 {
		port = whetl.DefaultPort
	}

	return &whetl.ConnectionConfig{
		Host:           c.Connection.Host,
		Port:           port,
		Database:       c.Connection.Database,
		Username:       c.Connection.Username,
		Password:       c.Connection.Password,
		SSLMode:        c.Connection.SSLMode,
		Autocommit:     autocommit,
		Dialect:        dialect,
		AuthMethod:     auth,
		AWSRegion:      c.Connection.AWSRegion,
		ConnectRetries: c.Connection.ConnectRetries,
	}, nil
}

// CommandTimeout parses the timeout key, defaulting to whetl.DefaultCommandTimeout.
// Zero disables the timeout; negative durations are rejected.
func (c *Config) CommandTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return whetl.DefaultCommandTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, whetl.ErrInvalidConfig)
	}
	return d, nil
}

// Path returns the file the configuration was read from.
func (c *Config) Path() string {
	return c.path
}

// ResolvePath resolves a relative path against the config file's directory.
// Absolute paths, and any path when the config was not loaded from a file,
// are returned unchanged.
func (c *Config) ResolvePath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || c.path == "" {
		return rel
	}
	return filepath.Join(filepath.Dir(c.path), rel)
}
