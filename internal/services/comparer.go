package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vvka-141/mdmerge/internal/diff"
	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/files/scanner"
	"github.com/vvka-141/mdmerge/internal/report"
	"github.com/vvka-141/mdmerge/internal/rules"
	"github.com/vvka-141/mdmerge/internal/sortkey"
	"github.com/vvka-141/mdmerge/internal/tree"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// CompareResult summarizes a compare run.
type CompareResult struct {
	Rows          []mdmerge.DiffRow
	DuplicateKeys int
	FilesScanned  int
	FilesSkipped  int
}

// CompareService implements the compare pipeline.
// Thread-Safety: NOT safe for concurrent Compare() calls on the same
// instance. Create separate instances for concurrent runs.
type CompareService struct {
	logger     mdmerge.Logger
	fsProvider filesystem.FileSystemProvider
	now        func() time.Time
}

// NewCompareService creates a CompareService with all dependencies
// injected. Panics on nil dependencies: those are programmer errors that
// should fail loudly at startup.
func NewCompareService(logger mdmerge.Logger, fsProvider filesystem.FileSystemProvider) *CompareService {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &CompareService{
		logger:     logger,
		fsProvider: fsProvider,
		now:        time.Now,
	}
}

// branchLeaves is everything parsed out of one branch: per-path leaf
// maps and the artifact identity per path.
type branchLeaves struct {
	leaves   map[string]*diff.LeafMap
	identity map[string]string
	skipped  map[string]bool
}

// Compare runs the full compare pipeline and writes the diff log and,
// when duplicates were found, the duplicate-key report.
func (s *CompareService) Compare(ctx context.Context, cfg mdmerge.CompareConfig) (*CompareResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mdmerge.ErrInvalidConfig, err)
	}

	stamp := diff.Stamp{
		Work:      cfg.Work,
		Timestamp: s.now().Format(mdmerge.TimestampLayout),
	}

	dups := tree.NewDuplicates()
	result := &CompareResult{}

	source, err := s.scanBranch(ctx, r, "SRC", cfg.SourcePath, dups, result)
	if err != nil {
		return nil, err
	}
	targets := make([]*branchLeaves, 0, len(cfg.TargetPaths))
	for i, targetPath := range cfg.TargetPaths {
		tag := fmt.Sprintf("TRG%d", i+1)
		target, err := s.scanBranch(ctx, r, tag, targetPath, dups, result)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	differ := diff.NewDiffer(s.logger)
	for _, p := range unionPaths(source, targets) {
		if skippedAnywhere(p, source, targets) {
			continue
		}
		identity := source.identity[p]
		if identity == "" {
			for _, t := range targets {
				if identity = t.identity[p]; identity != "" {
					break
				}
			}
		}
		targetMaps := make([]*diff.LeafMap, len(targets))
		for i, t := range targets {
			targetMaps[i] = t.leaves[p]
		}
		result.Rows = append(result.Rows, differ.Compare(identity, stamp, source.leaves[p], targetMaps)...)
	}

	sortRows(result.Rows)
	result.DuplicateKeys = len(dups.Rows())

	if err := report.WriteDiffLog(cfg.DiffLogPath, result.Rows); err != nil {
		return nil, err
	}
	s.logger.Info("wrote %d diff rows to %s", len(result.Rows), cfg.DiffLogPath)

	if cfg.DuplicatesPath != "" && !dups.Empty() {
		if err := report.WriteDuplicates(cfg.DuplicatesPath, dups); err != nil {
			return nil, err
		}
		s.logger.Warn("%d duplicate diff keys, see %s", result.DuplicateKeys, cfg.DuplicatesPath)
	}

	return result, nil
}

// scanBranch parses one branch into leaf maps.
func (s *CompareService) scanBranch(ctx context.Context, r *rules.Resolver, tag, root string, dups *tree.Duplicates, result *CompareResult) (*branchLeaves, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc := scanner.NewBranchScannerWithFS(r, s.fsProvider)
	refs, err := sc.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan branch %s: %w", root, err)
	}

	branch := &branchLeaves{
		leaves:   make(map[string]*diff.LeafMap),
		identity: make(map[string]string),
		skipped:  make(map[string]bool),
	}
	keys := sortkey.New()
	sep := r.Separator()

	for _, ref := range refs {
		content, err := sc.ReadArtifact(root, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ref.Path, err)
		}
		result.FilesScanned++

		if ref.Overwrite {
			leaves := diff.NewLeafMap(sep)
			leaves.Add(diff.NewKey(ref.Path, mdmerge.MarkerOverwrite), keys.Raw(content))
			branch.leaves[ref.Path] = leaves
			branch.identity[ref.Path] = ref.Identity()
			continue
		}

		leaves := diff.NewLeafMap(sep)
		parseCtx := &tree.Context{
			Rules:  r,
			Branch: tag,
			Path:   ref.Path,
			Leaves: leaves,
			Dups:   dups,
			Report: true,
			Keys:   keys,
		}
		parsed, err := tree.Parse(parseCtx, content)
		if err != nil {
			if errors.Is(err, mdmerge.ErrNotMetadata) {
				s.logger.Verbose("skipping %s: no metadata root element", ref.Path)
				branch.skipped[ref.Path] = true
				result.FilesSkipped++
				continue
			}
			return nil, err
		}
		branch.leaves[ref.Path] = leaves
		branch.identity[ref.Path] = parsed.Identity()
	}
	return branch, nil
}

// skippedAnywhere reports whether any branch classified the path as
// non-metadata. Such files never produce rows: an unparseable copy on
// one side says nothing about a semantic change.
func skippedAnywhere(p string, source *branchLeaves, targets []*branchLeaves) bool {
	if source.skipped[p] {
		return true
	}
	for _, t := range targets {
		if t.skipped[p] {
			return true
		}
	}
	return false
}

// unionPaths merges every branch's artifact paths, sorted.
func unionPaths(source *branchLeaves, targets []*branchLeaves) []string {
	seen := make(map[string]bool)
	for p := range source.leaves {
		seen[p] = true
	}
	for _, t := range targets {
		for p := range t.leaves {
			seen[p] = true
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// sortRows orders rows by (metadata identity, path, diff key), the
// stable order the diff log is written in.
func sortRows(rows []mdmerge.DiffRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Metadata != rows[j].Metadata {
			return rows[i].Metadata < rows[j].Metadata
		}
		if rows[i].Path != rows[j].Path {
			return rows[i].Path < rows[j].Path
		}
		for l := 0; l < 4; l++ {
			if rows[i].Keys[l] != rows[j].Keys[l] {
				return rows[i].Keys[l] < rows[j].Keys[l]
			}
		}
		return false
	})
}
