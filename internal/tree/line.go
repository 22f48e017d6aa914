package tree

import "strings"

type lineKind int

const (
	lineOther lineKind = iota
	lineOpen            // <tag>
	lineClose           // </tag>
	lineEmptyElem       // <tag/>
	lineParam           // <tag>value</tag>
)

// classify identifies one logical line of the dialect. The input is the
// line with surrounding whitespace trimmed; content is the primitive
// value for lineParam lines.
func classify(s string) (kind lineKind, tag string, content string) {
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return lineOther, "", ""
	}
	if s[1] == '?' || s[1] == '!' {
		return lineOther, "", ""
	}

	if s[1] == '/' {
		tag = s[2 : len(s)-1]
		if validTag(tag) {
			return lineClose, tag, ""
		}
		return lineOther, "", ""
	}

	if strings.HasSuffix(s, "/>") {
		tag = s[1 : len(s)-2]
		if validTag(tag) {
			return lineEmptyElem, tag, ""
		}
		return lineOther, "", ""
	}

	end := strings.IndexByte(s, '>')
	tag = s[1:end]
	if !validTag(tag) {
		return lineOther, "", ""
	}
	if end == len(s)-1 {
		return lineOpen, tag, ""
	}
	if strings.HasSuffix(s, "</"+tag+">") {
		content = s[end+1 : len(s)-len(tag)-3]
		if !strings.ContainsAny(content, "<>") {
			return lineParam, tag, content
		}
	}
	return lineOther, "", ""
}

// validTag accepts XML name characters the dialect uses.
func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		case c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}

// isOpeningLine reports whether a trimmed line opens a block.
func isOpeningLine(s string) bool {
	k, _, _ := classify(s)
	return k == lineOpen
}

// isClosingLine reports whether a trimmed line closes a block.
func isClosingLine(s string) bool {
	k, _, _ := classify(s)
	return k == lineClose
}

// splitLines splits text into lines keeping the terminators, so joining
// the result reproduces the input byte for byte.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// matchesAllPatterns reports whether every pattern occurs in content.
// An empty pattern list never matches.
func matchesAllPatterns(content string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if !strings.Contains(content, p) {
			return false
		}
	}
	return true
}
