package types

import "io/fs"

// PathKind distinguishes journal entries: rollback removes files
// unconditionally but directories only when empty.
type PathKind string

const (
	KindFile      PathKind = "file"
	KindDirectory PathKind = "dir"
)

// InstalledPath is one filesystem mutation performed during a
// transaction. The journal owns these for the life of one run.
type InstalledPath struct {
	Path string      `json:"path"`
	Kind PathKind    `json:"kind"`
	Mode fs.FileMode `json:"mode,omitempty"`
}
