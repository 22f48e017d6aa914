package diff

import (
	"sort"
	"strings"
)

// Key is the path tuple identifying one leaf: the artifact's
// branch-relative file path plus up to four section-key levels.
// Unused levels are empty.
type Key struct {
	Path   string
	Levels [4]string
}

// NewKey builds a key from a path and its used levels.
func NewKey(path string, levels ...string) Key {
	k := Key{Path: path}
	copy(k.Levels[:], levels)
	return k
}

// Join renders the key as the separator-joined tuple. All five segments
// are always present so joined keys are unambiguous.
func (k Key) Join(sep string) string {
	return k.Path + sep + k.Levels[0] + sep + k.Levels[1] + sep + k.Levels[2] + sep + k.Levels[3]
}

// Depth returns the number of used levels.
func (k Key) Depth() int {
	for i := len(k.Levels) - 1; i >= 0; i-- {
		if k.Levels[i] != "" {
			return i + 1
		}
	}
	return 0
}

// LevelIndex returns the index of the first level equal to marker, or -1.
func (k Key) LevelIndex(marker string) int {
	for i, level := range k.Levels {
		if level == marker {
			return i
		}
	}
	return -1
}

// ParseKey splits a joined key back into its parts.
func ParseKey(joined, sep string) Key {
	parts := strings.Split(joined, sep)
	k := Key{Path: parts[0]}
	for i := 1; i < len(parts) && i <= 4; i++ {
		k.Levels[i-1] = parts[i]
	}
	return k
}

// LeafMap maps diff keys to leaf content for one artifact in one branch.
// Within one leaf map each key is unique; duplicate adds keep the first
// value and report the collision to the caller.
type LeafMap struct {
	sep     string
	entries map[string]string
	keys    map[string]Key
	order   []string
}

// NewLeafMap creates an empty leaf map using the given separator.
func NewLeafMap(sep string) *LeafMap {
	return &LeafMap{
		sep:     sep,
		entries: make(map[string]string),
		keys:    make(map[string]Key),
	}
}

// Separator returns the separator the map joins keys with.
func (m *LeafMap) Separator() string {
	return m.sep
}

// Add records a leaf. Returns false when the key is already present; the
// first value is kept.
func (m *LeafMap) Add(k Key, value string) bool {
	joined := k.Join(m.sep)
	if _, exists := m.entries[joined]; exists {
		return false
	}
	m.entries[joined] = value
	m.keys[joined] = k
	m.order = append(m.order, joined)
	return true
}

// Get returns the value for a joined key.
func (m *LeafMap) Get(joined string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.entries[joined]
	return v, ok
}

// Key returns the decomposed key for a joined key.
func (m *LeafMap) Key(joined string) Key {
	return m.keys[joined]
}

// Len returns the number of leaves.
func (m *LeafMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// SortedKeys returns all joined keys in lexicographic order.
func (m *LeafMap) SortedKeys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.order))
	copy(keys, m.order)
	sort.Strings(keys)
	return keys
}
