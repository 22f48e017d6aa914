// Package scaffold initializes new mdmerge projects from embedded
// templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed all:templates
var templatesFS embed.FS

// Scaffolder handles project initialization from templates.
type Scaffolder struct {
	verbose bool
}

// NewScaffolder creates a new Scaffolder instance.
func NewScaffolder(verbose bool) *Scaffolder {
	return &Scaffolder{verbose: verbose}
}

// InitProject writes the starter mdmerge.yaml and merge-rules.conf into
// targetPath. Existing files are never overwritten.
func (s *Scaffolder) InitProject(targetPath string) error {
	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	return fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel("templates", path)
		if err != nil {
			return err
		}
		target := filepath.Join(targetPath, rel)

		if _, err := os.Stat(target); err == nil {
			s.logVerbose("keeping existing %s", rel)
			return nil
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		s.logVerbose("wrote %s", rel)
		return nil
	})
}

func (s *Scaffolder) logVerbose(format string, args ...interface{}) {
	if s.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
