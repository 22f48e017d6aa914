package diff

import (
	"strings"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Stamp carries the work-item metadata applied to every emitted row.
type Stamp struct {
	Work      mdmerge.WorkItem
	Timestamp string
}

// Differ compares leaf maps and classifies the differences.
type Differ struct {
	logger mdmerge.Logger
}

// NewDiffer creates a new Differ.
// Panics if logger is nil.
func NewDiffer(logger mdmerge.Logger) *Differ {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Differ{logger: logger}
}

// Compare diffs one artifact's source leaf map against its target leaf
// maps. The first target is the merge target and drives classification;
// additional targets contribute extra old-value columns only. Either
// side may be nil when the artifact is absent from that branch.
//
// Rows driven by source leaves come first, ordered by diff key; Delete
// rows for target-only leaves follow, also ordered by diff key.
func (d *Differ) Compare(identity string, stamp Stamp, source *LeafMap, targets []*LeafMap) []mdmerge.DiffRow {
	var rows []mdmerge.DiffRow

	var primary *LeafMap
	if len(targets) > 0 {
		primary = targets[0]
	}
	targetEmpty := primary.Len() == 0

	skipMetadata := false
	skipped := newPrefixSet()

	if source != nil {
		for _, joined := range source.SortedKeys() {
			if skipMetadata {
				break
			}
			k := source.Key(joined)
			value, _ := source.Get(joined)

			switch {
			case k.Levels[0] == mdmerge.MarkerNewMetadata:
				if targetEmpty {
					rows = append(rows, d.row(stamp, mdmerge.ActionCreateFile, identity, k, value, targets, joined))
					skipMetadata = true
				}

			case k.Levels[0] == mdmerge.MarkerOverwrite:
				old, ok := primary.Get(joined)
				if targetEmpty || !ok {
					rows = append(rows, d.row(stamp, mdmerge.ActionCreateFile, identity, k, value, targets, joined))
				} else if old != value {
					rows = append(rows, d.row(stamp, mdmerge.ActionUpdateFile, identity, k, value, targets, joined))
				}

			default:
				if skipped.covers(k, source.sep) {
					continue
				}
				old, ok := primary.Get(joined)
				if !ok {
					rows = append(rows, d.row(stamp, mdmerge.ActionCreateItem, identity, k, value, targets, joined))
					if i := k.LevelIndex(mdmerge.MarkerContents); i > 0 {
						skipped.add(k, i, source.sep)
					}
					continue
				}
				if k.LevelIndex(mdmerge.MarkerContents) >= 0 {
					// The parent exists on both sides; child leaves carry
					// any difference at a finer granularity.
					continue
				}
				if !equalNormalized(value, old) || d.differsInExtraTargets(joined, value, targets) {
					rows = append(rows, d.row(stamp, mdmerge.ActionUpdateItem, identity, k, value, targets, joined))
				}
			}
		}
	}

	rows = append(rows, d.deleteRows(identity, stamp, source, primary, targets)...)
	return rows
}

// deleteRows emits Delete File / Delete Item rows for leaves present in
// the merge target but absent from the source.
func (d *Differ) deleteRows(identity string, stamp Stamp, source, primary *LeafMap, targets []*LeafMap) []mdmerge.DiffRow {
	if primary.Len() == 0 {
		return nil
	}

	var rows []mdmerge.DiffRow
	sourceEmpty := source.Len() == 0
	skipMetadata := false
	skipped := newPrefixSet()

	for _, joined := range primary.SortedKeys() {
		if skipMetadata {
			break
		}
		if _, ok := source.Get(joined); ok {
			continue
		}
		k := primary.Key(joined)

		switch {
		case k.Levels[0] == mdmerge.MarkerNewMetadata:
			if sourceEmpty {
				rows = append(rows, d.row(stamp, mdmerge.ActionDeleteFile, identity, k, "", targets, joined))
				skipMetadata = true
			}

		case k.Levels[0] == mdmerge.MarkerOverwrite:
			if sourceEmpty {
				rows = append(rows, d.row(stamp, mdmerge.ActionDeleteFile, identity, k, "", targets, joined))
			}

		default:
			if sourceEmpty {
				// Deleting the whole file covers every item in it.
				continue
			}
			if skipped.covers(k, primary.sep) {
				continue
			}
			rows = append(rows, d.row(stamp, mdmerge.ActionDeleteItem, identity, k, "", targets, joined))
			if i := k.LevelIndex(mdmerge.MarkerContents); i > 0 {
				skipped.add(k, i, primary.sep)
			}
		}
	}
	return rows
}

func (d *Differ) row(stamp Stamp, action mdmerge.Action, identity string, k Key, newValue string, targets []*LeafMap, joined string) mdmerge.DiffRow {
	oldValues := make([]string, len(targets))
	for i, t := range targets {
		oldValues[i], _ = t.Get(joined)
	}
	return mdmerge.DiffRow{
		LogName:   stamp.Work.LogName,
		Timestamp: stamp.Timestamp,
		WorkTeam:  stamp.Work.WorkTeam,
		Developer: stamp.Work.Developer,
		UserStory: stamp.Work.UserStory,
		Action:    action,
		Metadata:  identity,
		Path:      k.Path,
		Keys:      k.Levels,
		NewValue:  newValue,
		OldValues: oldValues,
	}
}

func (d *Differ) differsInExtraTargets(joined, value string, targets []*LeafMap) bool {
	for _, t := range targets[1:] {
		if old, ok := t.Get(joined); ok && !equalNormalized(value, old) {
			return true
		}
	}
	return false
}

// equalNormalized compares two leaf values after stripping leading
// whitespace on every line.
func equalNormalized(a, b string) bool {
	if a == b {
		return true
	}
	return normalize(a) == normalize(b)
}

func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// prefixSet suppresses redundant child rows under an inserted or deleted
// parent, identified by the key prefix above its #CONTENTS# marker.
type prefixSet struct {
	prefixes []string
}

func newPrefixSet() *prefixSet {
	return &prefixSet{}
}

func (p *prefixSet) add(k Key, contentsIndex int, sep string) {
	prefix := k.Path
	for i := 0; i < contentsIndex; i++ {
		prefix += sep + k.Levels[i]
	}
	p.prefixes = append(p.prefixes, prefix+sep)
}

func (p *prefixSet) covers(k Key, sep string) bool {
	joined := k.Join(sep)
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(joined, prefix) {
			return true
		}
	}
	return false
}
