package mdmerge

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid config", ErrInvalidConfig, ExitConfigError},
		{"wrapped invalid config", fmt.Errorf("compare: %w", ErrInvalidConfig), ExitConfigError},
		{"malformed diff log", ErrMalformedDiffLog, ExitDiffLogError},
		{"approval denied", ErrApprovalDenied, ExitApprovalDenied},
		{"reconstruct failed", ErrReconstructFailed, ExitReconstructFailed},
		{"unclassified", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRowError_Error(t *testing.T) {
	err := &RowError{
		Path:      "objects/Account.object",
		Timestamp: "2026-08-06 10:00:00",
		Action:    ActionUpdateItem,
		Message:   "target missing",
	}
	want := "objects/Account.object [2026-08-06 10:00:00] Update Item: target missing"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
