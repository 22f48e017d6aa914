package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/report"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Result summarizes an assembled package.
type Result struct {
	FilesCopied      int
	PackageMembers   int
	DestructiveCount int
}

// Assembler builds deployment packages.
type Assembler struct {
	logger     mdmerge.Logger
	fsProvider filesystem.FileSystemProvider
}

// NewAssembler creates an Assembler with all dependencies injected.
// Panics on nil dependencies.
func NewAssembler(logger mdmerge.Logger, fsProvider filesystem.FileSystemProvider) *Assembler {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Assembler{logger: logger, fsProvider: fsProvider}
}

// Assemble reads the diff log, copies every changed artifact into the
// output directory, and writes the manifests. Deleted members go into
// destructiveChanges.xml only; they never appear in package.xml.
func (a *Assembler) Assemble(ctx context.Context, cfg mdmerge.PackageConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows, err := report.ReadDiffLog(cfg.DiffLogPath)
	if err != nil {
		return nil, err
	}

	packageMembers := Members{}
	destructiveMembers := Members{}
	copied := make(map[string]bool)
	result := &Result{}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		metaType, name := mdmerge.SplitIdentity(row.Metadata)

		switch row.Action {
		case mdmerge.ActionDeleteFile, mdmerge.ActionDeleteItem:
			destructiveMembers.Add(metaType, name)
			continue
		default:
			packageMembers.Add(metaType, name)
		}

		if copied[row.Path] {
			continue
		}
		if err := a.copyArtifact(cfg, row.Path); err != nil {
			a.logger.Error("failed to package %s: %v", row.Path, err)
			continue
		}
		copied[row.Path] = true
		result.FilesCopied++
	}

	if err := a.writeManifest(cfg, "package.xml", packageMembers); err != nil {
		return nil, err
	}
	if !destructiveMembers.Empty() {
		if err := a.writeManifest(cfg, "destructiveChanges.xml", destructiveMembers); err != nil {
			return nil, err
		}
	}

	result.PackageMembers = countMembers(packageMembers)
	result.DestructiveCount = countMembers(destructiveMembers)
	a.logger.Info("assembled package in %s: %d files, %d members, %d destructive",
		cfg.OutputPath, result.FilesCopied, result.PackageMembers, result.DestructiveCount)
	return result, nil
}

func (a *Assembler) copyArtifact(cfg mdmerge.PackageConfig, relPath string) error {
	source := filepath.Join(cfg.SourcePath, filepath.FromSlash(relPath))
	target := filepath.Join(cfg.OutputPath, filepath.FromSlash(relPath))

	content, err := a.fsProvider.ReadFile(source)
	if err != nil {
		return fmt.Errorf("cannot read source: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("cannot create package directory: %v", err)
	}
	return os.WriteFile(target, content, 0o644)
}

func (a *Assembler) writeManifest(cfg mdmerge.PackageConfig, name string, members Members) error {
	data, err := RenderManifest(members, cfg.APIVersion)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputPath, 0o755); err != nil {
		return fmt.Errorf("cannot create package directory: %w", err)
	}
	return os.WriteFile(filepath.Join(cfg.OutputPath, name), data, 0o644)
}

func countMembers(members Members) int {
	n := 0
	for _, names := range members {
		n += len(names)
	}
	return n
}
