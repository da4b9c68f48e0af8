package whetl

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ImportRecord is one row of the import ledger table.
// (Source, FileName) is the natural key; ID is assigned by the server.
type ImportRecord struct {
	ID           int64
	FileName     string
	Source       string
	FileDate     time.Time
	Status       Status
	FilePath     string
	TimeImported *time.Time
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

// IDSet is a set of ledger record ids. The template renderer expands it to
// an SQL tuple, so it can be used directly with "IN %(ids)s".
type IDSet []int64

// Location addresses a prefix in object storage.
type Location struct {
	Bucket string
	Prefix string
}

// String renders the location as s3://bucket/prefix.
func (l Location) String() string {
	if l.Prefix == "" {
		return "s3://" + l.Bucket
	}
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// Join returns a new location with name appended to the prefix.
func (l Location) Join(name string) Location {
	name = strings.TrimPrefix(name, "/")
	if l.Prefix == "" {
		return Location{Bucket: l.Bucket, Prefix: name}
	}
	return Location{Bucket: l.Bucket, Prefix: strings.TrimSuffix(l.Prefix, "/") + "/" + name}
}

// UpsertSpec describes an update-then-insert-missing sync from a source
// table into a target table.
type UpsertSpec struct {
	SourceTable    string
	TargetTable    string
	UniquenessKeys []string
	Columns        []string

	// ColumnFunctions maps a column to SQL functions applied innermost-first.
	ColumnFunctions map[string][]string

	// HasTimestamps maintains created_at/updated_at on the target.
	HasTimestamps bool

	// AllowDuplicateSourceKeys skips the duplicate-key pre-check. The row
	// picked among duplicates is then decided by the server.
	AllowDuplicateSourceKeys bool
}

// Validate checks that the spec can produce well-formed SQL.
// Returns all validation errors combined.
func (s UpsertSpec) Validate() error {
	var errs []error

	if strings.TrimSpace(s.SourceTable) == "" {
		errs = append(errs, fmt.Errorf("source table is required: %w", ErrInvalidUpsertSpec))
	}
	if strings.TrimSpace(s.TargetTable) == "" {
		errs = append(errs, fmt.Errorf("target table is required: %w", ErrInvalidUpsertSpec))
	}
	if len(s.UniquenessKeys) == 0 {
		errs = append(errs, fmt.Errorf("at least one uniqueness key is required: %w", ErrInvalidUpsertSpec))
	}
	if len(s.Columns) == 0 {
		errs = append(errs, fmt.Errorf("at least one column is required: %w", ErrInvalidUpsertSpec))
	}
	for _, k := range s.UniquenessKeys {
		if !slices.Contains(s.Columns, k) {
			errs = append(errs, fmt.Errorf("uniqueness key %q is not in columns: %w", k, ErrInvalidUpsertSpec))
		}
	}
	for col := range s.ColumnFunctions {
		if !slices.Contains(s.Columns, col) {
			errs = append(errs, fmt.Errorf("column function given for unknown column %q: %w", col, ErrInvalidUpsertSpec))
		}
	}

	return errors.Join(errs...)
}

// NonKeyColumns returns the columns that are not uniqueness keys, in order.
func (s UpsertSpec) NonKeyColumns() []string {
	var out []string
	for _, c := range s.Columns {
		if !slices.Contains(s.UniquenessKeys, c) {
			out = append(out, c)
		}
	}
	return out
}

// LoadSpec describes a bulk load (COPY) from object storage into a table.
type LoadSpec struct {
	Table    string
	Location Location
	Columns  []string
	Options  []string
}

// Validate checks the required fields of a load.
func (s LoadSpec) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Table) == "" {
		errs = append(errs, fmt.Errorf("load table is required: %w", ErrInvalidConfig))
	}
	if s.Location.Bucket == "" {
		errs = append(errs, fmt.Errorf("load location bucket is required: %w", ErrInvalidLocation))
	}
	return errors.Join(errs...)
}

// UnloadSpec describes a bulk unload of a query result to object storage.
type UnloadSpec struct {
	Query    string
	Location Location
	Options  []string
}

// Validate checks the required fields of an unload.
func (s UnloadSpec) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Query) == "" {
		errs = append(errs, fmt.Errorf("unload query is required: %w", ErrInvalidConfig))
	}
	if s.Location.Bucket == "" {
		errs = append(errs, fmt.Errorf("unload location bucket is required: %w", ErrInvalidLocation))
	}
	return errors.Join(errs...)
}

// AuthMethod selects how the connector authenticates to the warehouse.
type AuthMethod int

const (
	AuthMethodStandard AuthMethod = iota
	AuthMethodAWSIAM
)

func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "standard"
	case AuthMethodAWSIAM:
		return "aws_iam"
	default:
		return "unknown"
	}
}

// ParseAuthMethod parses the configuration spelling of an auth method.
// An empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws_iam", "aws", "iam":
		return AuthMethodAWSIAM, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// Dialect selects warehouse-specific SQL fragments.
type Dialect string

const (
	DialectRedshift Dialect = "redshift"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect parses a dialect name. An empty string selects DialectRedshift.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "redshift":
		return DialectRedshift, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (valid: redshift, postgres): %w", s, ErrInvalidConfig)
	}
}

// Now returns the dialect's current-timestamp expression.
func (d Dialect) Now() string {
	if d == DialectPostgres {
		return "now()"
	}
	return "GETDATE()"
}

// errIAMNeedsPostgres rejects aws_iam against Redshift: the connector issues
// RDS auth tokens, which Redshift does not accept.
var errIAMNeedsPostgres = fmt.Errorf("aws_iam auth issues RDS tokens and requires dialect postgres: %w", ErrUnsupportedAuthMethod)

// ConnectionConfig holds everything needed to open a warehouse connection.
type ConnectionConfig struct {
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	SSLMode        string
	Autocommit     bool
	Dialect        Dialect
	AuthMethod     AuthMethod
	AWSRegion      string
	ConnectRetries int
}

// Validate checks the required connection fields.
func (c *ConnectionConfig) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.ConnectRetries < 0 {
		errs = append(errs, fmt.Errorf("connect_retries must not be negative: %w", ErrInvalidConfig))
	}
	switch c.AuthMethod {
	case AuthMethodStandard:
		if c.Password == "" {
			errs = append(errs, fmt.Errorf("password is required: %w", ErrInvalidConfig))
		}
	case AuthMethodAWSIAM:
		if c.Username == "" {
			errs = append(errs, fmt.Errorf("username is required for aws_iam auth: %w", ErrInvalidConfig))
		}
		if c.AWSRegion == "" {
			errs = append(errs, fmt.Errorf("aws_region is required for aws_iam auth: %w", ErrInvalidConfig))
		}
		if c.Dialect != DialectPostgres {
			errs = append(errs, errIAMNeedsPostgres)
		}
	}
	return errors.Join(errs...)
}
