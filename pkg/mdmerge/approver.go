package mdmerge

import "context"

// Approver gates the pipeline phases (compare → merge → package).
// Declining a phase aborts the run cleanly, leaving already-written
// outputs in place.
type Approver interface {
	// RequestApproval asks whether the named phase should proceed.
	// Returns (false, nil) when the user declines.
	RequestApproval(ctx context.Context, phase string) (bool, error)
}
