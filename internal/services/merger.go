package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/merge"
	"github.com/vvka-141/mdmerge/internal/report"
	"github.com/vvka-141/mdmerge/internal/rules"
	"github.com/vvka-141/mdmerge/internal/sortkey"
	"github.com/vvka-141/mdmerge/internal/tree"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// MergeResult summarizes a merge run.
type MergeResult struct {
	FilesUpdated int
	FilesCopied  int
	FilesDeleted int
	RowErrors    []*mdmerge.RowError
	Notes        []string
}

// MergeService applies a diff log to a target branch.
// Thread-Safety: NOT safe for concurrent Merge() calls on the same
// instance.
type MergeService struct {
	logger     mdmerge.Logger
	fsProvider filesystem.FileSystemProvider
}

// NewMergeService creates a MergeService with all dependencies injected.
// Panics on nil dependencies.
func NewMergeService(logger mdmerge.Logger, fsProvider filesystem.FileSystemProvider) *MergeService {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &MergeService{logger: logger, fsProvider: fsProvider}
}

// Merge reads the diff log and applies it to the target branch. Per-row
// failures are collected into the result; reconstruction failures abort
// the run.
func (s *MergeService) Merge(ctx context.Context, cfg mdmerge.MergeConfig) (*MergeResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mdmerge.ErrInvalidConfig, err)
	}

	rows, err := report.ReadDiffLog(cfg.DiffLogPath)
	if err != nil {
		return nil, err
	}

	result := &MergeResult{}
	updated := make(map[string]bool)

	for _, fileLog := range merge.GroupLog(rows) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, request := range fileLog.Requests {
			if err := s.applyRequest(cfg, r, fileLog.Path, request, updated, result); err != nil {
				return nil, err
			}
		}
	}

	for _, rowErr := range result.RowErrors {
		s.logger.Error("%s", rowErr.Error())
	}
	return result, nil
}

// applyRequest applies one (file, timestamp) batch: file-level rows
// directly, item-level rows through the tree engine.
func (s *MergeService) applyRequest(cfg mdmerge.MergeConfig, r *rules.Resolver, path string, request merge.Request, updated map[string]bool, result *MergeResult) error {
	targetFile := filepath.Join(cfg.TargetPath, filepath.FromSlash(path))
	sourceFile := filepath.Join(cfg.SourcePath, filepath.FromSlash(path))

	actions := merge.NewActionSet()
	haveItems := false

	for _, row := range request.Rows {
		switch row.Action {
		case mdmerge.ActionCreateFile, mdmerge.ActionUpdateFile:
			if updated[path] {
				note := fmt.Sprintf("%s already updated, skipping %s", path, row.Action)
				result.Notes = append(result.Notes, note)
				s.logger.Info(note)
				continue
			}
			if err := s.copyFile(sourceFile, targetFile); err != nil {
				result.RowErrors = append(result.RowErrors, &mdmerge.RowError{
					Path: path, Timestamp: request.Timestamp, Action: row.Action,
					Message: err.Error(),
				})
				continue
			}
			updated[path] = true
			result.FilesCopied++
			s.logger.Verbose("copied %s", path)

		case mdmerge.ActionDeleteFile:
			if err := os.Remove(targetFile); err != nil {
				if os.IsNotExist(err) {
					s.logger.Warn("%s already absent, nothing to delete", path)
				} else {
					result.RowErrors = append(result.RowErrors, &mdmerge.RowError{
						Path: path, Timestamp: request.Timestamp, Action: row.Action,
						Message: err.Error(),
					})
				}
				continue
			}
			result.FilesDeleted++
			s.logger.Verbose("deleted %s", path)

		case mdmerge.ActionCreateItem, mdmerge.ActionUpdateItem, mdmerge.ActionDeleteItem:
			if err := actions.AddRow(row); err != nil {
				result.RowErrors = append(result.RowErrors, &mdmerge.RowError{
					Path: path, Timestamp: request.Timestamp, Action: row.Action,
					Message: err.Error(),
				})
				continue
			}
			haveItems = true

		default:
			result.RowErrors = append(result.RowErrors, &mdmerge.RowError{
				Path: path, Timestamp: request.Timestamp, Action: row.Action,
				Message: mdmerge.ErrUnknownAction.Error(),
			})
		}
	}

	if !haveItems {
		return nil
	}

	content, err := s.fsProvider.ReadFile(targetFile)
	if err != nil {
		result.RowErrors = append(result.RowErrors, &mdmerge.RowError{
			Path: path, Timestamp: request.Timestamp, Action: mdmerge.ActionUpdateItem,
			Message: fmt.Sprintf("cannot read target: %v", err),
		})
		return nil
	}

	parseCtx := &tree.Context{
		Rules:   r,
		Branch:  "TRG",
		Path:    path,
		Actions: actions,
		Keys:    sortkey.New(),
	}
	parsed, err := tree.Parse(parseCtx, content)
	if err != nil {
		if errors.Is(err, mdmerge.ErrNotMetadata) {
			result.RowErrors = append(result.RowErrors, &mdmerge.RowError{
				Path: path, Timestamp: request.Timestamp, Action: mdmerge.ActionUpdateItem,
				Message: "target is not a metadata file",
			})
			return nil
		}
		return err
	}

	for _, note := range actions.AlreadyPresent() {
		msg := fmt.Sprintf("%s: %s already updated", path, note)
		result.Notes = append(result.Notes, msg)
		s.logger.Info(msg)
	}
	if !actions.Empty() {
		for _, remaining := range actions.Remaining() {
			s.logger.Warn("%s: unapplied action %s (target already up-to-date?)", path, remaining)
		}
	}

	if err := tree.WriteFile(targetFile, tree.Render(parsed, r)); err != nil {
		return err
	}
	updated[path] = true
	result.FilesUpdated++
	s.logger.Verbose("reconstructed %s", path)
	return nil
}

// copyFile copies source to target, creating parent directories.
func (s *MergeService) copyFile(source, target string) error {
	content, err := s.fsProvider.ReadFile(source)
	if err != nil {
		return fmt.Errorf("cannot read source: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("cannot create target directory: %v", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("cannot write target: %v", err)
	}
	return nil
}
