package sqltemplate

import (
	"fmt"
	"regexp"
)

var validIdentifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifierLength is the PostgreSQL NAMEDATALEN limit; Redshift allows more.
const maxIdentifierLength = 127

// ValidateIdentifier checks that name is a plain unquoted SQL identifier.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("identifier %q exceeds %d character limit", name, maxIdentifierLength)
	}
	if !validIdentifierPattern.MatchString(name) {
		return fmt.Errorf("%q is not a valid identifier", name)
	}
	return nil
}
