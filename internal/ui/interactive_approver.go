package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// InteractiveApprover implements whetl.Approver by asking the user to type
// the drop target back before a destructive operation.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover bound to stdin and stderr.
func NewInteractiveApprover(verbose bool) whetl.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval prompts the user to type target to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	fmt.Fprintf(a.output, "\n%s\n", WarningStyle.Render(fmt.Sprintf("%s  WARNING: You are about to DROP %s", SymbolWarning, target)))
	fmt.Fprintln(a.output, "This will permanently delete every row in these tables!")
	fmt.Fprintf(a.output, "\nTo confirm, type '%s' and press Enter: ", target)

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == target {
			fmt.Fprintln(a.output, SuccessStyle.Render(SymbolCheck+" Confirmed. Proceeding with drop..."))
			return true, nil
		}
		fmt.Fprintln(a.output, ErrorStyle.Render(fmt.Sprintf("%s Input '%s' does not match '%s'. Operation cancelled.", SymbolCross, input, target)))
		return false, nil
	}
}

var _ whetl.Approver = (*InteractiveApprover)(nil)
