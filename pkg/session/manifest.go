// Package session defines the fixed set of files that make up the
// gamescope session feature: the session startup scripts, the polkit
// helper, and the Wayland session desktop entry.
package session

import (
	_ "embed"
	"io/fs"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
)

//go:embed manifest.yaml
var manifestData []byte

// File is one payload file to install.
type File struct {
	// Source is the path relative to the payload directory.
	Source string `yaml:"source"`

	// Destination is the absolute install path, joined under the
	// configured prefix.
	Destination string `yaml:"destination"`

	// Mode is the octal permission mode, e.g. "0755".
	Mode string `yaml:"mode"`
}

// Manifest is the ordered list of payload files. Install processes it
// first-to-last; uninstall last-to-first.
type Manifest struct {
	Files []File `yaml:"files"`
}

// Load parses the embedded manifest.
func Load() (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(manifestData, &m); err != nil {
		return nil, sessionerrors.Wrap(err, sessionerrors.ErrInternal, "failed to parse session manifest")
	}
	return &m, nil
}

// FileMode parses the file's octal mode string.
func (f File) FileMode() (fs.FileMode, error) {
	mode, err := strconv.ParseUint(f.Mode, 8, 32)
	if err != nil {
		return 0, sessionerrors.Wrapf(err, sessionerrors.ErrInternal, "invalid mode %q for %s", f.Mode, f.Destination)
	}
	return fs.FileMode(mode), nil
}

// SourcePath resolves the file's source under the payload directory.
func (f File) SourcePath(payloadDir string) string {
	return filepath.Join(payloadDir, f.Source)
}

// DestinationPath resolves the file's destination under the prefix.
func (f File) DestinationPath(prefix string) string {
	return filepath.Join(prefix, f.Destination)
}
