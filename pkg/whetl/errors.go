package whetl

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := ledger.LookupOrCreate(ctx, req)
//	if errors.Is(err, whetl.ErrInvalidTransition) {
//	    // The record does not exist yet and the status cannot create it
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingParameter indicates a template referenced a parameter the caller did not supply.
	ErrMissingParameter = errors.New("missing template parameter")

	// ErrInvalidTransition indicates a ledger status change that is not allowed.
	ErrInvalidTransition = errors.New("invalid import status transition")

	// ErrAmbiguousImportRecord indicates more than one ledger row shares a (source, file_name) key.
	ErrAmbiguousImportRecord = errors.New("ambiguous import record")

	// ErrExecutionFailed indicates SQL execution failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrConnectionFailed indicates the warehouse connection could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidUpsertSpec indicates an upsert specification that cannot produce valid SQL.
	ErrInvalidUpsertSpec = errors.New("invalid upsert specification")

	// ErrDuplicateSourceKeys indicates the upsert source table holds several rows per uniqueness key.
	ErrDuplicateSourceKeys = errors.New("duplicate uniqueness keys in upsert source")

	// ErrUnknownFunction indicates a column function outside the allow-list.
	ErrUnknownFunction = errors.New("unknown column function")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrInvalidLocation indicates an object storage location that is not s3://bucket[/prefix].
	ErrInvalidLocation = errors.New("invalid storage location")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// MissingParameterError reports a %(name)s placeholder with no matching parameter.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingParameter, e.Name)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// InvalidTransitionError reports an attempt to create a ledger record with a
// status that only applies to existing records.
type InvalidTransitionError struct {
	Source   string
	FileName string
	Status   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: no record for %s/%s, cannot create one with status %s (allowed: %s, %s)",
		ErrInvalidTransition, e.Source, e.FileName, e.Status, StatusStarted, StatusSkipped)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// AmbiguousImportRecordError reports a ledger key matched by more than one row.
type AmbiguousImportRecordError struct {
	Source   string
	FileName string
	Count    int
}

func (e *AmbiguousImportRecordError) Error() string {
	return fmt.Sprintf("%s: %d rows for source %s and file %s",
		ErrAmbiguousImportRecord, e.Count, e.Source, e.FileName)
}

func (e *AmbiguousImportRecordError) Is(target error) bool {
	return target == ErrAmbiguousImportRecord
}

// UnknownFunctionError reports a column function name outside the allow-list.
type UnknownFunctionError struct {
	Column   string
	Function string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("%s %q on column %q", ErrUnknownFunction, e.Function, e.Column)
}

func (e *UnknownFunctionError) Is(target error) bool {
	return target == ErrUnknownFunction || target == ErrInvalidUpsertSpec
}

// ExecutionError wraps a server or driver error with a preview of the SQL
// that produced it. Unwrap exposes the underlying error so callers can still
// reach *pgconn.PgError with errors.As.
type ExecutionError struct {
	SQL string
	Err error
}

// NewExecutionError builds an ExecutionError with the SQL truncated to
// MaxErrorPreviewLength characters.
func NewExecutionError(sql string, err error) *ExecutionError {
	return &ExecutionError{SQL: PreviewSQL(sql), Err: err}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v\nSQL: %s", ErrExecutionFailed, e.Err, e.SQL)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// PreviewSQL collapses whitespace and truncates sql for display in errors and logs.
func PreviewSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > MaxErrorPreviewLength {
		return s[:MaxErrorPreviewLength] + "..."
	}
	return s
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrDuplicateSourceKeys):
		return ExitDuplicateSourceKey
	case errors.Is(err, ErrAmbiguousImportRecord), errors.Is(err, ErrInvalidTransition):
		return ExitLedgerError
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrMissingParameter),
		errors.Is(err, ErrInvalidUpsertSpec),
		errors.Is(err, ErrInvalidLocation),
		errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the error strings cobra produces for bad invocations.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"missing required argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
