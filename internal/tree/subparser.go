package tree

import (
	"strings"

	"github.com/vvka-141/mdmerge/internal/diff"
	"github.com/vvka-141/mdmerge/internal/merge"
	"github.com/vvka-141/mdmerge/internal/sortkey"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// pathLevel is one resolved level of the descent path: the element name
// and its derived sort key.
type pathLevel struct {
	name string
	key  string
}

func refsOf(path []pathLevel) []merge.ChildRef {
	refs := make([]merge.ChildRef, len(path))
	for i, l := range path {
		refs[i] = merge.ChildRef{Name: l.name, Key: l.key}
	}
	return refs
}

func levelsOf(path []pathLevel, extra ...string) []string {
	levels := make([]string, 0, len(path)+len(extra))
	for _, l := range path {
		levels = append(levels, l.name+"="+l.key)
	}
	return append(levels, extra...)
}

// segment is one piece of a block's body: a parameter line or a child
// block (original, rebuilt, or spliced in by a create action).
type segment struct {
	child bool
	name  string
	key   string
	text  string
}

// parseSub descends into a Standard sub-section's body, emitting leaves
// for its parameters and children and applying any bound merge actions.
// It returns the (possibly modified) text of the block. Descent is
// bounded: a complex child at the deepest keyable level is kept as one
// flat leaf with its structure preserved verbatim.
func parseSub(ctx *Context, scope string, path []pathLevel, content string) string {
	lines := splitLines(content)
	if len(lines) < 2 {
		return content
	}
	opening := lines[0]
	closing := lines[len(lines)-1]
	inner := lines[1 : len(lines)-1]

	var segs []segment
	i := 0
	for i < len(inner) {
		t := strings.TrimSpace(inner[i])
		if !isOpeningLine(t) {
			segs = append(segs, segment{text: inner[i]})
			i++
			continue
		}

		_, name, _ := classify(t)
		depth := 1
		j := i + 1
		for j < len(inner) && depth > 0 {
			tt := strings.TrimSpace(inner[j])
			if isOpeningLine(tt) {
				depth++
			} else if isClosingLine(tt) {
				depth--
			}
			j++
		}
		block := strings.Join(inner[i:j], "")
		i = j

		if seg, keep := processChild(ctx, scope, path, name, block); keep {
			segs = append(segs, seg)
		}
	}

	segs = applyParamsChange(ctx, path, segs)
	segs = spliceCreates(ctx, path, segs)

	var body strings.Builder
	var params strings.Builder
	for _, seg := range segs {
		body.WriteString(seg.text)
		if !seg.child {
			params.WriteString(seg.text)
		}
	}

	whole := opening + body.String() + closing
	ctx.addLeaf(diff.NewKey(ctx.Path, levelsOf(path, mdmerge.MarkerContents)...), whole)
	ctx.addLeaf(diff.NewKey(ctx.Path, levelsOf(path, mdmerge.MarkerParams)...), params.String())
	return whole
}

// processChild keys one child block and either recurses into it, records
// it as a flat leaf, or drops it per delete rules and merge actions.
func processChild(ctx *Context, scope string, path []pathLevel, name, block string) (segment, bool) {
	childScope := scope + "-" + name
	r := ctx.Rules

	if matchesAllPatterns(block, r.DeletePatterns(childScope)) {
		return segment{}, false
	}

	key, shape := ctx.Keys.Derive(block, r.Sort(childScope))
	ctx.Actions.DiscardCreate(refsOf(path), name, key)
	refs := append(refsOf(path), merge.ChildRef{Name: name, Key: key})

	if ctx.Actions.TakeDelete(refs) {
		return segment{}, false
	}

	childPath := append(append([]pathLevel{}, path...), pathLevel{name, key})

	if payload, ok := ctx.Actions.TakeChange(refs); ok {
		ctx.addLeaf(diff.NewKey(ctx.Path, levelsOf(childPath)...), payload)
		return segment{child: true, name: name, key: key, text: payload}, true
	}

	descend := shape == sortkey.ShapeComplex &&
		len(path) < 3 &&
		r.ParserMode(childScope) != mdmerge.MarkerFullSection &&
		(ctx.Report || r.HasFilters(childScope) || ctx.Actions.HasChildActionsAt(refs))

	if descend {
		block = parseSub(ctx, childScope, childPath, block)
	} else {
		ctx.addLeaf(diff.NewKey(ctx.Path, levelsOf(childPath)...), block)
	}
	return segment{child: true, name: name, key: key, text: block}, true
}

// applyParamsChange substitutes the block's flat parameter lines when an
// action addresses its #PARAMS# leaf. The payload replaces the first
// parameter run; remaining parameter lines are dropped.
func applyParamsChange(ctx *Context, path []pathLevel, segs []segment) []segment {
	refs := append(refsOf(path), merge.ChildRef{Key: mdmerge.MarkerParams})
	payload, ok := ctx.Actions.TakeChange(refs)
	if !ok {
		return segs
	}

	out := segs[:0]
	replaced := false
	for _, seg := range segs {
		if seg.child {
			out = append(out, seg)
			continue
		}
		if !replaced {
			out = append(out, segment{text: payload})
			replaced = true
		}
	}
	if !replaced {
		out = append([]segment{{text: payload}}, out...)
	}
	return out
}

// spliceCreates inserts pending child creations in sorted order relative
// to existing child keys. Fallback keys have no natural ordering and are
// appended at the end of the body.
func spliceCreates(ctx *Context, path []pathLevel, segs []segment) []segment {
	creates := ctx.Actions.TakeChildCreates(refsOf(path))
	for _, c := range creates {
		seg := segment{child: true, name: c.Section, key: c.SortKey, text: c.Content}
		if sortkey.IsFallback(c.SortKey) {
			segs = append(segs, seg)
			continue
		}
		inserted := false
		for i, existing := range segs {
			if !existing.child {
				continue
			}
			if strings.ToLower(existing.key) > strings.ToLower(c.SortKey) {
				segs = append(segs[:i], append([]segment{seg}, segs[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			segs = append(segs, seg)
		}
	}
	return segs
}
