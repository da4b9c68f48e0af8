package params

import (
	"bytes"
	"fmt"

	"github.com/joho/godotenv"
)

// ParseEnvFile parses content in .env format: KEY=VALUE lines, # comments,
// optional single or double quotes, and an optional "export " prefix.
func ParseEnvFile(content []byte) (map[string]string, error) {
	result, err := godotenv.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	if _, ok := result[""]; ok {
		return nil, fmt.Errorf("invalid format: empty key")
	}
	return result, nil
}

// ReadEnvFile reads and parses the parameter file at path.
func ReadEnvFile(path string) (map[string]string, error) {
	result, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file %s: %w", path, err)
	}
	if _, ok := result[""]; ok {
		return nil, fmt.Errorf("params file %s: empty key", path)
	}
	return result, nil
}
