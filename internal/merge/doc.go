// Package merge turns diff-log rows into a merge-action tree and groups
// a diff log by target file and request timestamp.
//
// The action tree is consumed by the tree parser while it re-parses a
// target file: change payloads substitute sub-section content, delete
// markers drop sub-sections, and create lists are spliced in sorted
// order. Consumed entries are cleared so a second pass over the same
// tree applies nothing twice.
package merge
