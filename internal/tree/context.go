package tree

import (
	"github.com/vvka-141/mdmerge/internal/diff"
	"github.com/vvka-141/mdmerge/internal/merge"
	"github.com/vvka-141/mdmerge/internal/rules"
	"github.com/vvka-141/mdmerge/internal/sortkey"
)

// Context carries everything the engine needs for one file: resolved
// rules, the branch tag, the file path, the leaf-map and duplicate-key
// accumulators, and (during a merge) the bound action set. One Context
// is built per file; nothing here is global.
type Context struct {
	// Rules resolves per-scope options.
	Rules *rules.Resolver

	// Branch tags the leaf map's origin (e.g. "SRC", "TRG1").
	Branch string

	// Path is the branch-relative file path used in diff keys.
	Path string

	// Leaves accumulates the file's leaf map. Nil disables emission.
	Leaves *diff.LeafMap

	// Dups accumulates duplicate diff keys. Nil disables detection.
	Dups *Duplicates

	// Actions is the merge-action set to splice in. Nil outside merges.
	Actions *merge.ActionSet

	// Report forces full descent into sub-sections so every leaf is
	// individually keyed.
	Report bool

	// Keys derives sort keys.
	Keys sortkey.Maker
}

// addLeaf records a leaf and feeds the duplicate detector. The first
// value wins on collision; every observation is counted.
func (c *Context) addLeaf(k diff.Key, value string) {
	if c.Leaves == nil {
		return
	}
	c.Leaves.Add(k, value)
	if c.Dups != nil {
		c.Dups.Observe(c.Branch, k, value)
	}
}

// separator returns the configured diff-key separator.
func (c *Context) separator() string {
	if c.Leaves != nil {
		return c.Leaves.Separator()
	}
	return c.Rules.Separator()
}
