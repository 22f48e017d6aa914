// Package tree is the metadata tree engine: a line-oriented parser for
// the restricted metadata XML dialect, a canonicalizer, and a structural
// merge engine.
//
// Parse reads one artifact into a section tree up to five levels deep,
// emitting a flat leaf map of diff keys as a side effect. When a merge
// action set is bound in the Context, create/update/delete actions are
// spliced in while the tree is built. Render serializes the tree back to
// text, sorting siblings per the configured rules; with no mutations and
// no sort-order changes the output is byte-identical to the input.
//
// Sub-section content is stored as exact original bytes. The engine
// never uses encoding/xml: token-based parsers normalize whitespace and
// attribute order, which would break byte preservation.
package tree
