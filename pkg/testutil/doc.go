// Package testutil provides the in-memory filesystem and fake command
// runner used by sessionctl's tests.
package testutil
