package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// ForcedApprover implements whetl.Approver for --force runs. It prints a
// warning, counts down, and approves unless the context is cancelled first.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) whetl.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval displays a countdown and approves once it finishes.
func (a *ForcedApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	banner := fmt.Sprintf("DANGER: --force given, about to DROP %s\nAll rows in these tables will be lost.", target)
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, DangerStyle.Render(banner))
	fmt.Fprintln(a.output)

	seconds := int(whetl.DefaultForceApprovalCountdown.Seconds())
	for i := seconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rDropping in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r%s                              \n",
		SuccessStyle.Render(SymbolCheck+" Proceeding with drop of "+target+"..."))
	return true, nil
}

var _ whetl.Approver = (*ForcedApprover)(nil)
