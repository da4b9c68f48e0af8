package ui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for whetl.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// NonInteractiveEnv forces non-interactive mode when set to "1".
const NonInteractiveEnv = "WHETL_NON_INTERACTIVE"

// DetectMode determines whether whetl should prompt for confirmation.
//
// Returns ModeNonInteractive if:
//   - WHETL_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - stdin or stdout is not a terminal
func DetectMode() Mode {
	if os.Getenv(NonInteractiveEnv) == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
