package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// InteractiveApprover implements the Approver interface for console-based
// phase gates. It prompts the user to confirm before each pipeline phase
// runs against the target branch.
type InteractiveApprover struct {
	verbose bool
}

// NewInteractiveApprover creates a new InteractiveApprover.
func NewInteractiveApprover(verbose bool) mdmerge.Approver {
	return &InteractiveApprover{verbose: verbose}
}

// RequestApproval prompts the user to confirm the phase with y/yes.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, phase string) (bool, error) {
	fmt.Fprintf(os.Stderr, "\nProceed with the %s phase? [y/N]: ", phase)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
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
		switch strings.ToLower(input) {
		case "y", "yes":
			fmt.Fprintf(os.Stderr, "✓ Proceeding with %s...\n", phase)
			return true, nil
		}
		fmt.Fprintf(os.Stderr, "✗ %s declined.\n", phase)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ mdmerge.Approver = (*InteractiveApprover)(nil)
