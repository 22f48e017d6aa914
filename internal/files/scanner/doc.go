// Package scanner discovers metadata artifacts in a branch root.
//
// The scanner walks a branch directory tree and classifies every file by
// its top-level directory: merge directories yield structural artifacts,
// overwrite directories yield whole-file-checksum artifacts, and
// everything else is skipped. Files at the branch root whose name starts
// with an excluded prefix are ignored.
//
// The scanner is filesystem-agnostic through filesystem.FileSystemProvider,
// enabling both production use and in-memory tests.
package scanner
