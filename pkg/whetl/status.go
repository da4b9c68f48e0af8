package whetl

import (
	"fmt"
	"strings"
)

// Status is the processing state of an ingested file in the import ledger.
type Status string

const (
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFail    Status = "FAIL"
	StatusSkipped Status = "SKIPPED"
	StatusUnknown Status = "UNKNOWN"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusStarted, StatusSuccess, StatusFail, StatusSkipped, StatusUnknown}

// ParseStatus upper-cases s and matches it against the known statuses.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (valid: STARTED, SUCCESS, FAIL, SKIPPED, UNKNOWN): %w", s, ErrInvalidConfig)
}

// CanCreate reports whether a missing ledger record may be created with this status.
func (s Status) CanCreate() bool {
	return s == StatusStarted || s == StatusSkipped
}

// IsDone reports whether a file with this status needs no further processing.
func (s Status) IsDone() bool {
	return s == StatusSuccess || s == StatusSkipped
}

func (s Status) String() string {
	return string(s)
}
