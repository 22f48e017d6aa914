// Package rules resolves per-scope merge options from the merge-rules file.
//
// The rules file is a section-oriented key=value file. Global options live
// in the anonymous root section; per-scope options live in [scope] sections
// where a scope is the dash-joined chain of metadata type and sub-section
// names, e.g. [CustomObject-fields-valueSet]. Repeated keys form lists.
//
// Lookup for a scoped option proceeds: exact scope → metadata-type scope →
// global. First hit wins. Missing options fall back to documented defaults;
// a missing rules file is never fatal.
//
// The resolver is immutable after Load and safe for concurrent use.
package rules
