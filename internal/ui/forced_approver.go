package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// ForcedApprover implements the Approver interface for non-interactive
// runs (scripts, CI). Every phase gate is approved automatically; used
// when the --yes flag is provided or no terminal is attached.
type ForcedApprover struct {
	verbose bool
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) mdmerge.Approver {
	return &ForcedApprover{verbose: verbose}
}

// RequestApproval approves without prompting.
func (a *ForcedApprover) RequestApproval(ctx context.Context, phase string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.verbose {
		fmt.Fprintf(os.Stderr, "auto-approving %s phase\n", phase)
	}
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ mdmerge.Approver = (*ForcedApprover)(nil)
