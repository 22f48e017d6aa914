package tree

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vvka-141/mdmerge/internal/rules"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Render serializes the tree back to text. Sections are emitted in
// original order; sub-sections of Standard sections are sorted by
// case-folded sort key unless the section's reconstruct rule is
// #DONOTSORT#. The sort is stable, so ties keep insertion order and
// rendering twice yields identical bytes.
func Render(t *Tree, r *rules.Resolver) []byte {
	var b strings.Builder
	for _, sec := range t.Sections {
		subs := sec.Subs
		if sec.Type == SectionStandard && r.Reconstruct(t.Type+"-"+sec.Name) != mdmerge.MarkerDoNotSort {
			subs = sortedSubs(subs)
		}
		for _, sub := range subs {
			b.WriteString(sub.Content)
		}
	}
	return []byte(b.String())
}

func sortedSubs(subs []SubSection) []SubSection {
	out := make([]SubSection, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Key) < strings.ToLower(out[j].Key)
	})
	return out
}

// WriteFile replaces path with data using the temp-file-then-rename
// discipline: write <file>.new, rename <file> to <file>.orig, rename
// <file>.new into place, delete <file>.orig. Failures are fatal for the
// file and leave the .new or .orig sibling behind as a recovery hint.
func WriteFile(path string, data []byte) error {
	newPath := path + ".new"
	origPath := path + ".orig"

	if err := os.WriteFile(newPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %v: %w", newPath, err, mdmerge.ErrReconstructFailed)
	}
	if err := os.Rename(path, origPath); err != nil {
		return fmt.Errorf("rename %s: %v: %w", path, err, mdmerge.ErrReconstructFailed)
	}
	if err := os.Rename(newPath, path); err != nil {
		return fmt.Errorf("rename %s: %v: %w", newPath, err, mdmerge.ErrReconstructFailed)
	}
	if err := os.Remove(origPath); err != nil {
		return fmt.Errorf("remove %s: %v: %w", origPath, err, mdmerge.ErrReconstructFailed)
	}
	return nil
}
