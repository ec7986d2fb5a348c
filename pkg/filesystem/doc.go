// Package filesystem provides the production types.FS implementation
// backed by the os package. Tests use pkg/testutil's in-memory FS.
package filesystem
