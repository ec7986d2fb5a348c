// Package operations implements the reversible file primitives used
// by install and uninstall transactions. Every path an operation
// creates is recorded in the journal before the operation returns, so
// a later rollback can undo it.
package operations

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/journal"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// Ops performs journaled file operations.
type Ops struct {
	fs      types.FS
	journal *journal.Journal
	logger  zerolog.Logger
}

// New creates an Ops recording into the given journal.
func New(filesystem types.FS, j *journal.Journal) *Ops {
	return &Ops{
		fs:      filesystem,
		journal: j,
		logger:  logging.GetLogger("operations"),
	}
}

// InstallFile copies source to destination byte-for-byte and sets the
// requested permission mode. Missing parent directories are created
// and journaled individually, each before the file itself, so reverse
// replay removes the file first and then the now-empty parents.
func (o *Ops) InstallFile(source, destination string, mode fs.FileMode) error {
	if _, err := o.fs.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return sessionerrors.Newf(sessionerrors.ErrSourceMissing, "source file %s does not exist", source)
		}
		return sessionerrors.Wrapf(err, sessionerrors.ErrCopyFailed, "cannot stat source %s", source)
	}

	if err := o.createParents(filepath.Dir(destination)); err != nil {
		return err
	}

	data, err := o.fs.ReadFile(source)
	if err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrCopyFailed, "failed to read %s", source)
	}

	if err := o.fs.WriteFile(destination, data, mode); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrCopyFailed, "failed to write %s", destination)
	}

	// WriteFile's perm argument is subject to the umask; chmod makes
	// the mode exact.
	if err := o.fs.Chmod(destination, mode); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrPermission, "failed to set mode on %s", destination)
	}

	if err := o.journal.Record(types.InstalledPath{Path: destination, Kind: types.KindFile, Mode: mode}); err != nil {
		return err
	}

	o.logger.Info().
		Str("source", source).
		Str("destination", destination).
		Str("mode", mode.String()).
		Msg("Installed file")

	return nil
}

// createParents creates every missing ancestor of dir, top-down, and
// journals each one so rollback can remove them innermost-last.
func (o *Ops) createParents(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := o.fs.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if d == filepath.Dir(d) {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		d := missing[i]
		if err := o.fs.MkdirAll(d, 0755); err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrCopyFailed, "failed to create directory %s", d)
		}
		if err := o.journal.Record(types.InstalledPath{Path: d, Kind: types.KindDirectory}); err != nil {
			return err
		}
		o.logger.Debug().Str("path", d).Msg("Created directory")
	}

	return nil
}

// RemoveFile removes a path installed by a previous run. A missing
// path is success: uninstall must be safe against a partially
// installed or already-clean host. Directories are removed only when
// empty; a non-empty directory yields the soft DIR_NOT_EMPTY outcome.
func (o *Ops) RemoveFile(path string) error {
	info, err := o.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			o.logger.Debug().Str("path", path).Msg("Path already absent")
			return nil
		}
		return sessionerrors.Wrapf(err, sessionerrors.ErrPermission, "cannot stat %s", path)
	}

	if info.IsDir() {
		children, err := o.fs.ReadDir(path)
		if err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrPermission, "cannot read directory %s", path)
		}
		if len(children) > 0 {
			return sessionerrors.Newf(sessionerrors.ErrDirNotEmpty, "directory %s is not empty, leaving in place", path)
		}
	}

	if err := o.fs.Remove(path); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrPermission, "failed to remove %s", path)
	}

	o.logger.Info().Str("path", path).Msg("Removed")
	return nil
}
