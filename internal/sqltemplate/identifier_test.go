package sqltemplate

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "imports", false},
		{"suffixed", "imports_v2", false},
		{"leading underscore", "_tmp", false},
		{"empty", "", true},
		{"qualified", "media.imports", true},
		{"digit first", "1abc", true},
		{"injection", "imports; DROP TABLE x", true},
		{"quoted", `"imports"`, true},
		{"too long", strings.Repeat("a", 200), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
