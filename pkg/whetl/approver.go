package whetl

import "context"

// Approver handles confirmation of destructive operations such as dropping tables.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts the user to type the target name
type Approver interface {
	// RequestApproval asks for confirmation before target is destroyed.
	// Returns true if approved.
	RequestApproval(ctx context.Context, target string) (bool, error)
}
