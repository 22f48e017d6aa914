// Package packaging assembles a deployment package from a diff log:
// the changed artifacts copied under the output directory, a
// package.xml manifest listing created and updated members, and, when
// anything was deleted, a destructiveChanges.xml manifest.
package packaging
