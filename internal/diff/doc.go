// Package diff holds leaf maps and the differ that compares them.
//
// A leaf map is the position-independent flattening of one artifact in
// one branch: every leaf path in the section tree maps to its textual
// content under a stable diff key. The differ compares a source leaf map
// against one or more target leaf maps and emits classified diff rows.
//
// Leaf maps live only for the duration of a compare run.
package diff
