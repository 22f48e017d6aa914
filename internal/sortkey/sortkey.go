// Package sortkey derives deterministic sort keys for metadata
// sub-sections from their content and a configured rule.
package sortkey

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Shape classifies a sub-section's internal structure.
type Shape int

const (
	// ShapeSimple contains only primitive parameter lines.
	ShapeSimple Shape = iota
	// ShapeComplex contains at least one nested block.
	ShapeComplex
)

// Maker derives sort keys. It is a zero-size type; use value semantics.
// Safe for concurrent use by multiple goroutines.
type Maker struct{}

// New creates a new Maker.
// Returns by value to avoid heap allocation (Maker is a zero-size type).
func New() Maker {
	return Maker{}
}

// Derive computes the sort key of a content block under the given rule.
//
// The rule is an ordered list of tag names; the key is the value of the
// first tag found among the block's parameter lines. The markers
// #SINGLE# (literal key) and #CONTENT# (force checksum fallback) are
// recognized as single-element rules. When no key can be extracted the
// checksum fallback applies.
func (m Maker) Derive(content string, rule []string) (string, Shape) {
	region, shape := m.parameterRegion(content)

	if len(rule) == 1 {
		switch rule[0] {
		case mdmerge.MarkerSingle:
			return mdmerge.MarkerSingle, shape
		case mdmerge.MarkerContent:
			return m.Fallback(content), shape
		}
	}

	for _, tag := range rule {
		if key, ok := extractTagValue(region, tag); ok {
			return key, shape
		}
	}

	return m.Fallback(content), shape
}

// parameterRegion returns the block's depth-0 lines joined by newlines
// and the resulting shape. A leading <tag> line and trailing </tag> line
// are stripped before the depth walk.
func (m Maker) parameterRegion(content string) (string, Shape) {
	lines := strings.Split(content, "\n")

	if len(lines) > 0 && isOpeningLine(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 && isClosingLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	shape := ShapeSimple
	depth := 0
	var region []string
	for _, line := range lines {
		switch {
		case isOpeningLine(line):
			if depth == 0 {
				shape = ShapeComplex
			}
			depth++
		case isClosingLine(line):
			depth--
		default:
			if depth == 0 {
				region = append(region, line)
			}
		}
	}
	return strings.Join(region, "\n"), shape
}

// Raw computes the hex MD5 of raw content. Overwrite-directory files
// are compared by this whole-file checksum instead of structurally.
func (m Maker) Raw(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Fallback computes the content-addressed fallback key: strip leading
// whitespace on every line, remove line breaks, hex MD5 of the result.
// The key is exactly 32 lowercase hex characters with no spaces.
func (m Maker) Fallback(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(strings.TrimLeft(line, " \t"))
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// IsFallback reports whether a key is a checksum fallback key. Fallback
// keys have no natural ordering relation: insert logic appends them at
// the end of the parent's body instead of sorting them in.
//
// The exact rule is len==32, no spaces, all lowercase hex.
func IsFallback(key string) bool {
	if len(key) != 32 {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// extractTagValue finds the first <tag> occurrence in region and returns
// the text between it and the next '<'.
func extractTagValue(region, tag string) (string, bool) {
	open := "<" + tag + ">"
	start := strings.Index(region, open)
	if start < 0 {
		return "", false
	}
	rest := region[start+len(open):]
	end := strings.Index(rest, "<")
	if end < 0 {
		return rest, true
	}
	return rest[:end], true
}

// isOpeningLine reports whether a trimmed line is a pure opening tag
// like <fields>. Self-closing and primitive lines do not count.
func isOpeningLine(line string) bool {
	s := strings.TrimSpace(line)
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return false
	}
	if s[1] == '/' || s[1] == '?' || s[1] == '!' {
		return false
	}
	if strings.HasSuffix(s, "/>") {
		return false
	}
	// A primitive line <tag>value</tag> contains a second '<'.
	return strings.Count(s, "<") == 1
}

// isClosingLine reports whether a trimmed line is a pure closing tag.
func isClosingLine(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "</") && strings.HasSuffix(s, ">") && strings.Count(s, "<") == 1
}
