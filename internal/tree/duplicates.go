package tree

import (
	"sort"
	"strings"

	"github.com/vvka-141/mdmerge/internal/diff"
)

// Duplicates accumulates (branch, diff-key) occurrence counts during
// parse. Keys seen more than once indicate either checksum-fallback
// collisions (vanishingly unlikely) or input metadata with genuinely
// duplicated named entries. A sanity signal, never fatal.
type Duplicates struct {
	counts  map[string]int
	content map[string]string
	keys    map[string]DupKey
}

// DupKey identifies one observed leaf.
type DupKey struct {
	Branch string
	Key    diff.Key
}

// Pretty renders the key with newlines between path levels, the layout
// used in the duplicates report.
func (k DupKey) Pretty() string {
	parts := []string{k.Branch, k.Key.Path}
	for _, level := range k.Key.Levels {
		if level == "" {
			break
		}
		parts = append(parts, level)
	}
	return strings.Join(parts, "\n")
}

// DupRow is one duplicates-report row.
type DupRow struct {
	Key     DupKey
	Content string
	Count   int
}

// NewDuplicates creates an empty accumulator.
func NewDuplicates() *Duplicates {
	return &Duplicates{
		counts:  make(map[string]int),
		content: make(map[string]string),
		keys:    make(map[string]DupKey),
	}
}

// Observe records one leaf occurrence.
func (d *Duplicates) Observe(branch string, k diff.Key, content string) {
	id := branch + "\x00" + k.Join("\x00")
	d.counts[id]++
	if d.counts[id] == 1 {
		d.content[id] = content
		d.keys[id] = DupKey{Branch: branch, Key: k}
	}
}

// Rows returns one row per key observed more than once, ordered by key.
func (d *Duplicates) Rows() []DupRow {
	ids := make([]string, 0, len(d.counts))
	for id, n := range d.counts {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rows := make([]DupRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, DupRow{Key: d.keys[id], Content: d.content[id], Count: d.counts[id]})
	}
	return rows
}

// Empty reports whether no duplicates were observed.
func (d *Duplicates) Empty() bool {
	for _, n := range d.counts {
		if n > 1 {
			return false
		}
	}
	return true
}
