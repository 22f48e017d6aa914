// Package services wires the tree engine, scanner, differ, and reports
// into the compare and merge pipelines.
//
// CompareService walks the source and target branches, parses every
// structural artifact into leaf maps, checksums overwrite artifacts,
// diffs the maps, and writes the diff log plus the duplicate-key report.
//
// MergeService reads a diff log, groups it by target file and request
// timestamp, applies file-level rows directly, and replays item-level
// rows through the tree engine, reconstructing each touched file in
// place. Per-row failures are collected; reconstruction failures abort.
package services
