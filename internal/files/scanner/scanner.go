package scanner

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/rules"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// BranchScanner discovers and classifies artifacts in one branch root.
// Safe for concurrent use as long as the provided resolver and
// filesystem provider are.
type BranchScanner struct {
	rules      *rules.Resolver
	fsProvider filesystem.FileSystemProvider
}

// NewBranchScanner creates a scanner over the OS filesystem.
// Panics if rules is nil.
func NewBranchScanner(r *rules.Resolver) *BranchScanner {
	return NewBranchScannerWithFS(r, filesystem.NewOSFileSystem())
}

// NewBranchScannerWithFS creates a scanner with a custom filesystem
// provider, primarily for testing with in-memory filesystems.
// Panics if rules or fsProvider is nil.
func NewBranchScannerWithFS(r *rules.Resolver, fsProvider filesystem.FileSystemProvider) *BranchScanner {
	if r == nil {
		panic("rules cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &BranchScanner{rules: r, fsProvider: fsProvider}
}

// Scan walks the branch root and returns the classified artifacts,
// ordered by path.
func (s *BranchScanner) Scan(root string) ([]mdmerge.ArtifactRef, error) {
	dir, err := s.fsProvider.Open(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open branch root: %w", err)
	}

	mergeDirs := toSet(s.rules.MergeDirs())
	overwriteDirs := toSet(s.rules.OverwriteDirs())
	excluded := s.rules.ExcludedFilePrefixes()

	var refs []mdmerge.ArtifactRef
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking branch: %w", err)
		}
		if file.Info().IsDir() {
			return nil
		}

		relPath := filepath.ToSlash(file.RelativePath())
		base := path.Base(relPath)
		top, isNested := topSegment(relPath)

		if !isNested {
			if hasExcludedPrefix(base, excluded) {
				return nil
			}
			// Root-level files belong to no merge or overwrite directory.
			return nil
		}

		switch {
		case mergeDirs[top]:
			refs = append(refs, mdmerge.ArtifactRef{
				Path: relPath,
				Name: stem(base),
			})
		case overwriteDirs[top]:
			ref := mdmerge.ArtifactRef{Path: relPath, Overwrite: true}
			ref.Type, ref.Name = s.inferIdentity(top, base)
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// ReadArtifact reads one artifact's content from a branch root.
func (s *BranchScanner) ReadArtifact(root string, ref mdmerge.ArtifactRef) ([]byte, error) {
	return s.fsProvider.ReadFile(filepath.Join(root, filepath.FromSlash(ref.Path)))
}

// inferIdentity applies the metadatamap rules of an overwrite directory
// to a bare filename. Without a matching rule the directory name serves
// as the type and the filename stem as the name.
func (s *BranchScanner) inferIdentity(dir, base string) (string, string) {
	for _, rule := range s.rules.MetadataMap(dir) {
		if name, ok := rule.Infer(base); ok {
			return rule.Type, name
		}
	}
	return dir, stem(base)
}

// topSegment returns the first path segment and whether the path has
// more than one segment. The overwrite classification considers only
// the first segment; nested overwrite roots are not supported.
func topSegment(relPath string) (string, bool) {
	if i := strings.Index(relPath, "/"); i >= 0 {
		return relPath[:i], true
	}
	return relPath, false
}

// hasExcludedPrefix matches excluded prefixes against the bare filename.
func hasExcludedPrefix(base string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}

func stem(base string) string {
	return strings.TrimSuffix(base, path.Ext(base))
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
