package ledger

import (
	"fmt"

	"github.com/vvka-141/whetl/internal/sqltemplate"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// Table names an imports table: <Schema>.imports<Suffix>.
type Table struct {
	Schema string
	Suffix string
}

// DefaultTable is media.imports.
func DefaultTable() Table {
	return Table{Schema: whetl.DefaultLedgerSchema}
}

// Validate checks that both parts form plain identifiers.
func (t Table) Validate() error {
	if err := sqltemplate.ValidateIdentifier(t.Schema); err != nil {
		return fmt.Errorf("ledger schema: %v: %w", err, whetl.ErrInvalidConfig)
	}
	if err := sqltemplate.ValidateIdentifier(whetl.LedgerTableBase + t.Suffix); err != nil {
		return fmt.Errorf("ledger table suffix %q: %v: %w", t.Suffix, err, whetl.ErrInvalidConfig)
	}
	return nil
}

// Name returns the qualified table name.
func (t Table) Name() string {
	return t.Schema + "." + whetl.LedgerTableBase + t.Suffix
}

func (t Table) String() string {
	return t.Name()
}
