package mdmerge

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := comparer.Compare(ctx, config)
//	if errors.Is(err, mdmerge.ErrApprovalDenied) {
//	    // Handle user declining a phase gate
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotMetadata indicates a file has no recognizable metadata root
	// element within its first three lines. Callers normally skip the
	// file rather than abort.
	ErrNotMetadata = errors.New("not a metadata file")

	// ErrMalformedDiffLog indicates the diff log is missing required
	// columns or cannot be parsed as CSV.
	ErrMalformedDiffLog = errors.New("malformed diff log")

	// ErrApprovalDenied indicates the user declined a phase gate.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrReconstructFailed indicates writing or atomically swapping a
	// reconstructed file failed. This is fatal for the run; a .orig or
	// .new sibling is left behind as a recovery hint.
	ErrReconstructFailed = errors.New("reconstruction failed")

	// ErrUnknownAction indicates a diff-log row carries an unrecognized
	// merge action. The row is skipped; the error is collected per file.
	ErrUnknownAction = errors.New("unknown merge action")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrMalformedDiffLog):
		return ExitDiffLogError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrReconstructFailed):
		return ExitReconstructFailed
	}

	return ExitGeneralError
}

// RowError records a per-row failure during a merge run. Row errors are
// collected into a change log keyed by file and reported at the end of
// the run instead of aborting it.
type RowError struct {
	Path      string // target file the row addresses
	Timestamp string // Request Time Stamp of the row
	Action    Action // merge action of the row
	Message   string // what went wrong
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.Path, e.Timestamp, e.Action, e.Message)
}
