package params

import (
	"fmt"
	"strings"

	"github.com/vvka-141/whetl/internal/sqltemplate"
)

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
//
// Example:
//
//	params, err := ParseKeyValuePairs([]string{"day=2024-03-01", "source=FYI"})
//	// Returns: map[string]string{"day": "2024-03-01", "source": "FYI"}
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not in key=value format (example: --param day=2024-03-01)", pair)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("parameter has empty key: %q", pair)
		}

		result[key] = value
	}

	return result, nil
}

// Sources lists the parameter layers in increasing precedence.
type Sources struct {
	Config map[string]string
	Files  []string
	Pairs  []string
	Raw    []string
}

// Build merges every layer into template parameters.
func Build(src Sources) (sqltemplate.Params, error) {
	out := make(sqltemplate.Params, len(src.Config))
	for k, v := range src.Config {
		out[k] = v
	}

	for _, path := range src.Files {
		values, err := ReadEnvFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			out[k] = v
		}
	}

	pairs, err := ParseKeyValuePairs(src.Pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range pairs {
		out[k] = v
	}

	raw, err := ParseKeyValuePairs(src.Raw)
	if err != nil {
		return nil, err
	}
	for k, v := range raw {
		out[k] = sqltemplate.Raw(v)
	}

	return out, nil
}
