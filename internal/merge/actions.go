package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// ChildRef addresses one level of the action tree. Name may be empty
// when a diff-log row gives only the value form of a path level; lookup
// treats {name, key} and {"", key} as the same child.
type ChildRef struct {
	Name string
	Key  string
}

// ParseRef parses a path level of the form SNAME=SVALUE or bare SVALUE.
func ParseRef(level string) ChildRef {
	if name, key, found := strings.Cut(level, "="); found {
		return ChildRef{Name: name, Key: key}
	}
	return ChildRef{Key: level}
}

// Create is one pending creation: a sub-section (or section) to splice
// into the target.
type Create struct {
	Section string // section or child element name
	SortKey string // last path-level value; orders the insertion
	Content string // full block text, trailing newline guaranteed
}

type node struct {
	change    string
	hasChange bool
	del       bool
	creates   []Create
	children  map[ChildRef]*node
}

func newNode() *node {
	return &node{children: make(map[ChildRef]*node)}
}

// child finds a child accepting both the qualified and the value-only
// form, creating it when create is true. When several stored refs share
// the key, the lexically smallest name wins to keep lookups deterministic.
func (n *node) child(ref ChildRef, create bool) *node {
	if c, ok := n.children[ref]; ok {
		return c
	}
	var best *node
	bestName := ""
	for stored, c := range n.children {
		if stored.Key != ref.Key {
			continue
		}
		if stored.Name != "" && ref.Name != "" && stored.Name != ref.Name {
			continue
		}
		if best == nil || stored.Name < bestName {
			best, bestName = c, stored.Name
		}
	}
	if best != nil {
		return best
	}
	if !create {
		return nil
	}
	c := newNode()
	n.children[ref] = c
	return c
}

func (n *node) empty() bool {
	if n.hasChange || n.del || len(n.creates) > 0 {
		return false
	}
	for _, c := range n.children {
		if !c.empty() {
			return false
		}
	}
	return true
}

// ActionSet is the merge-action tree for one target file.
type ActionSet struct {
	root    *node
	present []string
}

// NewActionSet creates an empty action set.
func NewActionSet() *ActionSet {
	return &ActionSet{root: newNode()}
}

// AddRow queues one item-level diff row. File-level rows are rejected;
// the caller applies those directly.
func (s *ActionSet) AddRow(row mdmerge.DiffRow) error {
	if row.Action.IsFileLevel() {
		return fmt.Errorf("file-level action %q cannot be queued as an item action", row.Action)
	}

	refs := pathRefs(row.Keys)
	if len(refs) == 0 {
		return fmt.Errorf("row has no path levels")
	}

	switch row.Action {
	case mdmerge.ActionCreateItem:
		parent, last := refs[:len(refs)-1], refs[len(refs)-1]
		n := s.descend(parent, true)
		n.creates = append(n.creates, Create{
			Section: last.Name,
			SortKey: last.Key,
			Content: ensureNewline(row.NewValue),
		})
	case mdmerge.ActionUpdateItem:
		n := s.descend(refs, true)
		n.change = ensureNewline(row.NewValue)
		n.hasChange = true
	case mdmerge.ActionDeleteItem:
		n := s.descend(refs, true)
		n.del = true
	default:
		return fmt.Errorf("%w: %q", mdmerge.ErrUnknownAction, row.Action)
	}
	return nil
}

// pathRefs converts L1..L4 into tree refs, dropping unused levels and
// a trailing #CONTENTS# marker (it addresses the block as a whole, which
// the parent ref already identifies). A trailing #PARAMS# marker stays
// as its own ref, where the sub-parser looks up parameter changes.
func pathRefs(keys [4]string) []ChildRef {
	var refs []ChildRef
	for _, level := range keys {
		if level == "" {
			break
		}
		refs = append(refs, ParseRef(level))
	}
	for len(refs) > 1 {
		last := refs[len(refs)-1].Key
		if last == mdmerge.MarkerContents {
			refs = refs[:len(refs)-1]
			continue
		}
		break
	}
	return refs
}

func (s *ActionSet) descend(refs []ChildRef, create bool) *node {
	n := s.root
	for _, ref := range refs {
		n = n.child(ref, create)
		if n == nil {
			return nil
		}
	}
	return n
}

// TakeChange consumes and returns the ##CHANGE## payload at path.
func (s *ActionSet) TakeChange(path []ChildRef) (string, bool) {
	if s == nil {
		return "", false
	}
	n := s.descend(path, false)
	if n == nil || !n.hasChange {
		return "", false
	}
	payload := n.change
	n.change, n.hasChange = "", false
	return payload, true
}

// TakeDelete consumes and returns the ##DELETE## marker at path.
func (s *ActionSet) TakeDelete(path []ChildRef) bool {
	if s == nil {
		return false
	}
	n := s.descend(path, false)
	if n == nil || !n.del {
		return false
	}
	n.del = false
	return true
}

// TakeChildCreates consumes the pending creations directly under path.
// The result is ordered by (section, sort key) for deterministic splicing.
func (s *ActionSet) TakeChildCreates(path []ChildRef) []Create {
	if s == nil {
		return nil
	}
	n := s.descend(path, false)
	if n == nil || len(n.creates) == 0 {
		return nil
	}
	creates := n.creates
	n.creates = nil
	sortCreates(creates)
	return creates
}

// TakeSectionCreates consumes root-level creations for one named section.
func (s *ActionSet) TakeSectionCreates(section string) []Create {
	if s == nil {
		return nil
	}
	var taken, kept []Create
	for _, c := range s.root.creates {
		if c.Section == section {
			taken = append(taken, c)
		} else {
			kept = append(kept, c)
		}
	}
	s.root.creates = kept
	sortCreates(taken)
	return taken
}

// TakeRootCreatesBefore consumes root-level creations for sections whose
// name sorts strictly before the given section name. The parser calls
// this when it encounters each section, so creations for sections absent
// from the target are flushed at their sorted position.
func (s *ActionSet) TakeRootCreatesBefore(section string) []Create {
	if s == nil {
		return nil
	}
	var taken, kept []Create
	for _, c := range s.root.creates {
		if c.Section < section {
			taken = append(taken, c)
		} else {
			kept = append(kept, c)
		}
	}
	s.root.creates = kept
	sortCreates(taken)
	return taken
}

// TakeAllRootCreates consumes every remaining root-level creation. The
// parser calls this at the closing root tag.
func (s *ActionSet) TakeAllRootCreates() []Create {
	if s == nil {
		return nil
	}
	creates := s.root.creates
	s.root.creates = nil
	sortCreates(creates)
	return creates
}

// DiscardCreate drops a pending creation whose target already exists.
// The parser calls this for every committed sub-section so re-running a
// completed merge does not splice duplicates. Returns true when a
// matching creation was discarded.
func (s *ActionSet) DiscardCreate(parent []ChildRef, section, key string) bool {
	if s == nil {
		return false
	}
	n := s.descend(parent, false)
	if n == nil {
		return false
	}
	for i, c := range n.creates {
		if c.Section == section && c.SortKey == key {
			n.creates = append(n.creates[:i], n.creates[i+1:]...)
			s.present = append(s.present, section+"="+key)
			return true
		}
	}
	return false
}

// AlreadyPresent lists the creations discarded because the target
// already contained the item ("already updated" notes).
func (s *ActionSet) AlreadyPresent() []string {
	if s == nil {
		return nil
	}
	return s.present
}

// HasChildActionsAt reports whether any unconsumed action exists below
// the node at path. The parser uses this to decide whether a complex
// sub-section must be descended into.
func (s *ActionSet) HasChildActionsAt(path []ChildRef) bool {
	if s == nil {
		return false
	}
	n := s.descend(path, false)
	if n == nil {
		return false
	}
	if len(n.creates) > 0 {
		return true
	}
	for _, c := range n.children {
		if !c.empty() {
			return true
		}
	}
	return false
}

// Empty reports whether every queued action has been consumed.
func (s *ActionSet) Empty() bool {
	if s == nil {
		return true
	}
	return s.root.empty()
}

// Remaining describes unconsumed actions for diagnostics.
func (s *ActionSet) Remaining() []string {
	if s == nil {
		return nil
	}
	var out []string
	var walk func(prefix string, n *node)
	walk = func(prefix string, n *node) {
		if n.hasChange {
			out = append(out, prefix+" "+mdmerge.ActionMarkerChange)
		}
		if n.del {
			out = append(out, prefix+" "+mdmerge.ActionMarkerDelete)
		}
		for _, c := range n.creates {
			out = append(out, fmt.Sprintf("%s %s %s=%s", prefix, mdmerge.ActionMarkerCreate, c.Section, c.SortKey))
		}
		for ref, child := range n.children {
			label := ref.Key
			if ref.Name != "" {
				label = ref.Name + "=" + ref.Key
			}
			walk(strings.TrimSpace(prefix+"/"+label), child)
		}
	}
	walk("", s.root)
	sort.Strings(out)
	return out
}

func sortCreates(creates []Create) {
	sort.SliceStable(creates, func(i, j int) bool {
		if creates[i].Section != creates[j].Section {
			return creates[i].Section < creates[j].Section
		}
		return strings.ToLower(creates[i].SortKey) < strings.ToLower(creates[j].SortKey)
	})
}

func ensureNewline(s string) string {
	if s != "" && !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}
