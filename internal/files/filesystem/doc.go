// Package filesystem abstracts file access behind provider interfaces.
//
// Two implementations are provided: the OS filesystem for production use
// and an in-memory filesystem for tests. Branch scanning and artifact
// reads go through a FileSystemProvider; the merge and package steps
// write their output with the os package directly.
package filesystem
