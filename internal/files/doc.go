// Package files provides file-related functionality organized into sub-packages.
//
//   - filesystem: Filesystem abstraction interfaces and implementations (OS and in-memory)
//   - scanner: Branch walking and artifact discovery
//
// The filesystem abstraction exists so the scanner and other artifact
// reads can be exercised against in-memory trees in tests; merge and
// package output is written to the real disk.
package files
