package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Option keys recognized in the rules file.
const (
	keySort           = "sort"
	keyDelete         = "delete"
	keyReconstruct    = "reconstruct"
	keyFilter         = "filter"
	keyParser         = "parser"
	keyMerge          = "merge"
	keyOverwrite      = "overwrite"
	keyExcludeFiles   = "excludeFiles"
	keySeparator      = "diffKeySeparator"
	metadataMapPrefix = "metadatamap-"
)

// defaultExcludedPrefixes matches the stock excludeFiles setting. The
// leading "." entry relies on prefix matching against the bare filename,
// which also hides dotfiles.
var defaultExcludedPrefixes = []string{".", "package", "destructiveChanges"}

// Filter restricts a section to named entries: keep only entries whose
// sort key equals Key when the artifact's name equals Name.
type Filter struct {
	Name string
	Key  string
}

// NameRule infers an artifact (type, name) from a filename inside an
// overwrite directory.
type NameRule struct {
	Type     string
	Suffixes []string
}

// Infer applies the rule to a bare filename. The #BASENAME# suffix takes
// the part before the first dot; other suffixes are stripped from the end.
func (r NameRule) Infer(filename string) (string, bool) {
	for _, suffix := range r.Suffixes {
		if suffix == mdmerge.MarkerBasename {
			if i := strings.Index(filename, "."); i >= 0 {
				return filename[:i], true
			}
			return filename, true
		}
		if strings.HasSuffix(filename, suffix) {
			return strings.TrimSuffix(filename, suffix), true
		}
	}
	return "", false
}

// Resolver answers option lookups against a loaded rules file.
// A zero-value-equivalent Resolver (from Defaults) answers every lookup
// with the documented defaults.
type Resolver struct {
	file *ini.File // nil when running on defaults only
}

// Defaults returns a resolver backed by no rules file.
func Defaults() *Resolver {
	return &Resolver{}
}

// Load reads the rules file at path. A missing file is not an error:
// the returned resolver falls back to defaults for every lookup.
func Load(path string) (*Resolver, error) {
	if path == "" {
		return Defaults(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), nil
	}
	// IgnoreInlineComment keeps marker values like #DONOTSORT# intact;
	// only whole-line comments are recognized.
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true, IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules file %s: %w", path, err)
	}
	return &Resolver{file: f}, nil
}

// lookup finds the first section in the fallback chain that defines key
// and returns all its (shadowed) values. The chain is: exact scope,
// metadata-type scope (first dash segment), global root.
func (r *Resolver) lookup(scope, key string) []string {
	if r.file == nil {
		return nil
	}

	chain := []string{scope}
	if i := strings.Index(scope, "-"); i > 0 {
		chain = append(chain, scope[:i])
	}
	if scope != "" {
		chain = append(chain, ini.DefaultSection)
	}

	for _, name := range chain {
		if name == "" {
			name = ini.DefaultSection
		}
		section, err := r.file.GetSection(name)
		if err != nil {
			continue
		}
		if !section.HasKey(key) {
			continue
		}
		return section.Key(key).ValueWithShadows()
	}
	return nil
}

// Sort returns the sort rule for a scope: an ordered list of tag names,
// or a single marker (#SINGLE#, #CONTENT#). Nil means no rule is
// configured and the checksum fallback applies.
func (r *Resolver) Sort(scope string) []string {
	values := r.lookup(scope, keySort)
	var rule []string
	for _, v := range values {
		rule = append(rule, strings.Fields(v)...)
	}
	return rule
}

// DeletePatterns returns the substrings that, when all present in a
// sub-section's content, cause it to be dropped during parse.
func (r *Resolver) DeletePatterns(scope string) []string {
	return r.lookup(scope, keyDelete)
}

// Reconstruct returns #SORT# (default) or #DONOTSORT# for a scope.
func (r *Resolver) Reconstruct(scope string) string {
	values := r.lookup(scope, keyReconstruct)
	if len(values) > 0 && values[0] == mdmerge.MarkerDoNotSort {
		return mdmerge.MarkerDoNotSort
	}
	return mdmerge.MarkerSort
}

// ParserMode returns #FULLSECTION# when the scope's sections must not be
// descended into during sub-section parsing, or "".
func (r *Resolver) ParserMode(scope string) string {
	values := r.lookup(scope, keyParser)
	if len(values) > 0 && values[0] == mdmerge.MarkerFullSection {
		return mdmerge.MarkerFullSection
	}
	return ""
}

// Filters returns the NAME.KEY filters configured for a scope.
func (r *Resolver) Filters(scope string) []Filter {
	var filters []Filter
	for _, v := range r.lookup(scope, keyFilter) {
		name, key, found := strings.Cut(v, ".")
		if !found {
			continue
		}
		filters = append(filters, Filter{Name: name, Key: key})
	}
	return filters
}

// HasFilters reports whether any filter is configured for the scope.
func (r *Resolver) HasFilters(scope string) bool {
	return len(r.lookup(scope, keyFilter)) > 0
}

// MergeDirs returns the top-level directories parsed and merged
// structurally.
func (r *Resolver) MergeDirs() []string {
	return splitAll(r.lookup("", keyMerge))
}

// OverwriteDirs returns the top-level directories whose files are
// compared by whole-file checksum.
func (r *Resolver) OverwriteDirs() []string {
	return splitAll(r.lookup("", keyOverwrite))
}

// MetadataMap returns the filename inference rules for an overwrite
// directory. Each rule value is "TYPE suffix...".
func (r *Resolver) MetadataMap(dir string) []NameRule {
	var out []NameRule
	for _, v := range r.lookup("", metadataMapPrefix+dir) {
		fields := strings.Fields(v)
		if len(fields) < 2 {
			continue
		}
		out = append(out, NameRule{Type: fields[0], Suffixes: fields[1:]})
	}
	return out
}

// ExcludedFilePrefixes returns filename prefixes excluded at the top
// level of every branch.
func (r *Resolver) ExcludedFilePrefixes() []string {
	values := splitAll(r.lookup("", keyExcludeFiles))
	if len(values) == 0 {
		return defaultExcludedPrefixes
	}
	return values
}

// Separator returns the diff-key separator.
func (r *Resolver) Separator() string {
	values := r.lookup("", keySeparator)
	if len(values) == 0 || values[0] == "" {
		return mdmerge.DefaultDiffKeySeparator
	}
	return values[0]
}

func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
