package types

import "io/fs"

// FS abstracts filesystem operations for testing
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// Runner abstracts external command execution so display-manager
// adapters can be tested without the host's binaries.
type Runner interface {
	// LookPath reports the absolute path of an executable, or an error
	// if it is not present on the host.
	LookPath(name string) (string, error)

	// Run executes a command and returns its combined output.
	Run(name string, args ...string) ([]byte, error)
}
