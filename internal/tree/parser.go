package tree

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/vvka-141/mdmerge/internal/diff"
	"github.com/vvka-141/mdmerge/internal/merge"
	"github.com/vvka-141/mdmerge/internal/rules"
	"github.com/vvka-141/mdmerge/internal/sortkey"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// rootPattern recognizes the root element line <TYPE xmlns="...">.
var rootPattern = regexp.MustCompile(`^<([A-Za-z_][A-Za-z0-9_.]*) xmlns=[^<>]*>$`)

// Parse reads one artifact into a section tree. The root element must
// appear within the first three lines, otherwise the file is classified
// as non-metadata (ErrNotMetadata) and skipped by callers.
//
// When ctx.Leaves is set, the flat leaf map is populated as a side
// effect. When ctx.Actions is set, merge actions are consumed and
// spliced in while the tree is built.
func Parse(ctx *Context, content []byte) (*Tree, error) {
	lines := splitLines(string(content))

	rootTag := ""
	var header []string
	i := 0
	for ; i < len(lines) && i < 3; i++ {
		header = append(header, lines[i])
		if m := rootPattern.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			rootTag = m[1]
			i++
			break
		}
	}
	if rootTag == "" {
		return nil, fmt.Errorf("%s: %w", ctx.Path, mdmerge.ErrNotMetadata)
	}

	t := &Tree{Type: rootTag, Name: stem(ctx.Path)}
	t.Sections = append(t.Sections, &Section{
		Type: SectionHeader,
		Subs: []SubSection{{Content: strings.Join(header, "")}},
	})

	p := &parser{ctx: ctx, tree: t}
	for ; i < len(lines); i++ {
		p.feed(lines[i])
	}
	p.finish()

	ctx.addLeaf(diff.NewKey(ctx.Path, mdmerge.MarkerNewMetadata), "")
	return t, nil
}

// stem returns the basename without its extension.
func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// parser is the ProcessingSection / ProcessingSubSection state machine.
type parser struct {
	ctx  *Context
	tree *Tree

	cur   *Section // open Standard section, nil between sections
	buf   []string // lines of the sub-section being accumulated
	depth int      // block nesting inside buf; 0 means at section level
	done  bool     // saw the closing root tag
}

func (p *parser) feed(line string) {
	if p.done {
		p.appendLoose(line)
		return
	}

	if p.depth > 0 {
		p.buf = append(p.buf, line)
		t := strings.TrimSpace(line)
		if isOpeningLine(t) {
			p.depth++
		} else if isClosingLine(t) {
			p.depth--
			if p.depth == 0 {
				p.commitSub()
			}
		}
		return
	}

	kind, tag, _ := classify(strings.TrimSpace(line))
	switch {
	case kind == lineClose && tag == p.tree.Type:
		p.closeSection()
		p.flushAllCreates()
		p.tree.Sections = append(p.tree.Sections, &Section{
			Type: SectionEnd,
			Subs: []SubSection{{Content: line}},
		})
		p.done = true

	case kind == lineOpen:
		if p.cur == nil || p.cur.Name != tag {
			p.closeSection()
			p.flushCreatesBefore(tag)
			p.cur = &Section{Name: tag, Type: SectionStandard}
			p.tree.Sections = append(p.tree.Sections, p.cur)
		}
		p.buf = []string{line}
		p.depth = 1

	case kind == lineEmptyElem:
		p.closeSection()
		p.flushCreatesBefore(tag)
		p.addSingleLineSection(tag, SectionEmpty, mdmerge.MarkerSingle, line)

	case kind == lineParam:
		p.closeSection()
		p.flushCreatesBefore(tag)
		p.addSingleLineSection(tag, SectionParams, mdmerge.MarkerParam, line)

	default:
		p.appendLoose(line)
	}
}

// finish closes any open section when the input ends without a closing
// root tag. Content is preserved either way.
func (p *parser) finish() {
	if p.depth > 0 {
		p.commitSub()
		p.depth = 0
	}
	if !p.done {
		p.closeSection()
		p.flushAllCreates()
	}
}

// commitSub commits the buffered sub-section to the open Standard
// section, applying the section's resolved options and merge actions.
func (p *parser) commitSub() {
	content := strings.Join(p.buf, "")
	p.buf = nil
	sec := p.cur
	scope := p.tree.Type + "-" + sec.Name
	r := p.ctx.Rules

	if matchesAllPatterns(content, r.DeletePatterns(scope)) {
		return
	}

	key, shape := p.ctx.Keys.Derive(content, r.Sort(scope))
	p.ctx.Actions.DiscardCreate(nil, sec.Name, key)

	filters := r.Filters(scope)
	if len(filters) > 0 && !p.ctx.Report && p.ctx.Actions == nil {
		if !filterRetains(filters, p.tree.Name, key) {
			return
		}
	}

	ref := merge.ChildRef{Name: sec.Name, Key: key}
	descend := shape == sortkey.ShapeComplex &&
		r.ParserMode(scope) != mdmerge.MarkerFullSection &&
		(p.ctx.Report || len(filters) > 0 || p.ctx.Actions.HasChildActionsAt([]merge.ChildRef{ref}))

	if descend {
		content = parseSub(p.ctx, scope, []pathLevel{{sec.Name, key}}, content)
	} else {
		p.ctx.addLeaf(diff.NewKey(p.ctx.Path, sec.Name+"="+key), content)
	}

	if payload, ok := p.ctx.Actions.TakeChange([]merge.ChildRef{ref}); ok {
		content = payload
	}
	if p.ctx.Actions.TakeDelete([]merge.ChildRef{ref}) {
		return
	}

	sec.Subs = append(sec.Subs, SubSection{Key: key, Content: content})
}

// addSingleLineSection commits an Empty or Params section. Both hold a
// single verbatim line and can be mutated by merge actions.
func (p *parser) addSingleLineSection(tag string, typ SectionType, marker, line string) {
	ref := merge.ChildRef{Name: tag, Key: marker}
	p.ctx.Actions.DiscardCreate(nil, tag, marker)
	if p.ctx.Actions.TakeDelete([]merge.ChildRef{ref}) {
		return
	}
	if payload, ok := p.ctx.Actions.TakeChange([]merge.ChildRef{ref}); ok {
		line = payload
	}
	p.ctx.addLeaf(diff.NewKey(p.ctx.Path, tag+"="+marker), line)
	p.tree.Sections = append(p.tree.Sections, &Section{
		Name: tag,
		Type: typ,
		Subs: []SubSection{{Key: marker, Content: line}},
	})
}

// closeSection commits pending creations addressed to the closing
// section and leaves section level.
func (p *parser) closeSection() {
	if p.cur == nil {
		return
	}
	for _, c := range p.ctx.Actions.TakeSectionCreates(p.cur.Name) {
		p.cur.Subs = append(p.cur.Subs, SubSection{Key: c.SortKey, Content: c.Content})
	}
	p.cur = nil
}

// flushCreatesBefore emits pending created sections whose name sorts
// before the section about to open.
func (p *parser) flushCreatesBefore(tag string) {
	for _, c := range p.ctx.Actions.TakeRootCreatesBefore(tag) {
		p.appendCreatedSection(c)
	}
}

// flushAllCreates emits every remaining created section before the
// closing root tag.
func (p *parser) flushAllCreates() {
	for _, c := range p.ctx.Actions.TakeAllRootCreates() {
		p.appendCreatedSection(c)
	}
}

// appendCreatedSection materializes one created section from its
// payload. The section type follows the payload's first line.
func (p *parser) appendCreatedSection(c merge.Create) {
	lines := splitLines(c.Content)
	if len(lines) == 0 {
		return
	}
	kind, _, _ := classify(strings.TrimSpace(lines[0]))
	sec := &Section{Name: c.Section, Type: SectionStandard}
	switch kind {
	case lineEmptyElem:
		sec.Type = SectionEmpty
		sec.Subs = []SubSection{{Key: mdmerge.MarkerSingle, Content: c.Content}}
	case lineParam:
		sec.Type = SectionParams
		sec.Subs = []SubSection{{Key: mdmerge.MarkerParam, Content: c.Content}}
	default:
		sec.Subs = []SubSection{{Key: c.SortKey, Content: c.Content}}
	}
	p.tree.Sections = append(p.tree.Sections, sec)
}

// appendLoose attaches a line that belongs to no new construct to the
// nearest preceding content, preserving bytes.
func (p *parser) appendLoose(line string) {
	if len(p.tree.Sections) == 0 {
		return
	}
	last := p.tree.Sections[len(p.tree.Sections)-1]
	if len(last.Subs) == 0 {
		last.Subs = append(last.Subs, SubSection{Content: line})
		return
	}
	last.Subs[len(last.Subs)-1].Content += line
}

// filterRetains applies NAME.KEY filters: entries of artifacts named in
// the filter list are restricted to the listed keys; other artifacts
// are unaffected.
func filterRetains(filters []rules.Filter, artifact, key string) bool {
	restricted := false
	for _, f := range filters {
		if f.Name != artifact {
			continue
		}
		restricted = true
		if f.Key == key {
			return true
		}
	}
	return !restricted
}
