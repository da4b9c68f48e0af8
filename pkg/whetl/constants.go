package whetl

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess            = 0  // Command completed successfully
	ExitGeneralError       = 1  // Unknown or unclassified error
	ExitUsageError         = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic              = 3  // Internal panic (unexpected crash)
	ExitConfigError        = 10 // Invalid configuration, parameters or specs
	ExitConnectionError    = 11 // Failed to connect to the warehouse
	ExitApprovalDenied     = 12 // User denied a destructive operation
	ExitExecutionFailed    = 13 // SQL execution failed
	ExitLedgerError        = 14 // Ledger state is inconsistent (ambiguous record, invalid transition)
	ExitDuplicateSourceKey = 15 // Upsert source holds duplicate uniqueness keys
)

const (
	// DefaultPort is the port used when the configuration omits one.
	DefaultPort = 5432

	// DefaultAutocommit is the autocommit mode used when the configuration omits one.
	DefaultAutocommit = true

	// DefaultLedgerSchema is the schema holding the imports table when none is configured.
	DefaultLedgerSchema = "media"

	// LedgerTableBase is the unsuffixed name of the import ledger table.
	LedgerTableBase = "imports"

	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 250 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// MaxErrorPreviewLength is the maximum number of characters of SQL shown
	// in execution error messages.
	MaxErrorPreviewLength = 200

	// DefaultCommandTimeout bounds a single CLI invocation.
	DefaultCommandTimeout = 4 * time.Hour
)
