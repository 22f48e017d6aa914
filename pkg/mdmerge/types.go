package mdmerge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// WorkItem identifies who made a set of changes and under which user
// story. It is stamped onto every diff row produced by a compare run.
type WorkItem struct {
	// LogName is the work-log identifier of the run (generated if empty).
	LogName string

	// Developer is the developer's name.
	Developer string

	// WorkTeam is the team owning the change.
	WorkTeam string

	// UserStory is the story or ticket reference.
	UserStory string
}

// NewWorkLogName generates a unique work-log identifier.
func NewWorkLogName() string {
	return "WL-" + uuid.NewString()[:8]
}

// DiffRow is one semantic change between a source branch and one or more
// target branches. The field order mirrors the diff-log CSV columns.
type DiffRow struct {
	LogName   string // Developer Work Log Name
	Timestamp string // Request Time Stamp (TimestampLayout)
	WorkTeam  string
	Developer string
	UserStory string
	Action    Action
	Metadata  string    // TYPE=NAME
	Path      string    // branch-relative file path, forward slashes
	Keys      [4]string // L1..L4 diff-key levels, unused levels empty
	NewValue  string
	OldValues []string // one per target branch, first is the merge target
}

// OldValue returns the first old value (the merge target's), or "".
func (r *DiffRow) OldValue() string {
	if len(r.OldValues) == 0 {
		return ""
	}
	return r.OldValues[0]
}

// CompareConfig contains all parameters for a compare run.
type CompareConfig struct {
	// SourcePath is the branch root holding the changed repository state.
	SourcePath string

	// TargetPaths are one or more branch roots to compare against. The
	// first target is the one a subsequent merge applies to.
	TargetPaths []string

	// RulesPath locates the merge-rules file. Empty means defaults only.
	RulesPath string

	// DiffLogPath is where the diff log CSV is written.
	DiffLogPath string

	// DuplicatesPath is where the duplicate-key report is written.
	// Empty suppresses the report; otherwise it is written only when
	// duplicates were found.
	DuplicatesPath string

	// Work identifies the change set on every emitted row.
	Work WorkItem

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the CompareConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *CompareConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}
	if len(c.TargetPaths) == 0 {
		errs = append(errs, fmt.Errorf("at least one target path is required: %w", ErrInvalidConfig))
	}
	if c.DiffLogPath == "" {
		errs = append(errs, fmt.Errorf("DiffLogPath is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// MergeConfig contains all parameters for a merge run.
type MergeConfig struct {
	// DiffLogPath is the diff log to apply.
	DiffLogPath string

	// SourcePath is the branch root files are copied from on
	// Create File / Update File rows.
	SourcePath string

	// TargetPath is the branch root the diff log is applied to.
	TargetPath string

	// RulesPath locates the merge-rules file. Empty means defaults only.
	RulesPath string

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the MergeConfig has all required fields.
func (c *MergeConfig) Validate() error {
	var errs []error

	if c.DiffLogPath == "" {
		errs = append(errs, fmt.Errorf("DiffLogPath is required: %w", ErrInvalidConfig))
	}
	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}
	if c.TargetPath == "" {
		errs = append(errs, fmt.Errorf("TargetPath is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// PackageConfig contains all parameters for deployment-package assembly.
type PackageConfig struct {
	// DiffLogPath is the diff log describing the change set.
	DiffLogPath string

	// SourcePath is the branch root changed artifacts are copied from.
	SourcePath string

	// OutputPath is the directory the package is assembled into.
	OutputPath string

	// APIVersion is stamped into the generated manifests.
	APIVersion string

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the PackageConfig has all required fields and
// fills defaults.
func (c *PackageConfig) Validate() error {
	var errs []error

	if c.DiffLogPath == "" {
		errs = append(errs, fmt.Errorf("DiffLogPath is required: %w", ErrInvalidConfig))
	}
	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}
	if c.OutputPath == "" {
		errs = append(errs, fmt.Errorf("OutputPath is required: %w", ErrInvalidConfig))
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultPackageAPIVersion
	}

	return errors.Join(errs...)
}

// ArtifactRef identifies one metadata file discovered in a branch.
type ArtifactRef struct {
	// Path is the branch-relative path, forward slashes.
	Path string

	// Type is the metadata type. For structural artifacts it is read
	// from the root element; for overwrite artifacts it is inferred
	// from the filename via metadatamap rules.
	Type string

	// Name is the artifact name (filename stem or metadatamap result).
	Name string

	// Overwrite marks artifacts compared by whole-file checksum
	// instead of structurally.
	Overwrite bool
}

// Identity returns the TYPE=NAME identity used in the Metadata column.
func (a ArtifactRef) Identity() string {
	return a.Type + "=" + a.Name
}

// SplitIdentity splits a TYPE=NAME identity back into its parts.
func SplitIdentity(identity string) (metaType, name string) {
	if i := strings.Index(identity, "="); i >= 0 {
		return identity[:i], identity[i+1:]
	}
	return identity, ""
}
