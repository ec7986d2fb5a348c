// Package journal implements the append-only mutation log that makes
// install transactions reversible. Every path created during a run is
// recorded here, in order; rollback replays the log last-to-first.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// Journal records filesystem mutations for one transaction. Entries
// are mirrored to stable storage as they happen so that a crash (not
// just a caught failure) leaves evidence for an offline rollback;
// in-run rollback works from the in-memory copy.
type Journal struct {
	fs      types.FS
	path    string
	logger  zerolog.Logger
	entries []types.InstalledPath
	seen    map[string]bool
}

// New creates an empty journal persisting to the given file.
func New(fs types.FS, path string) *Journal {
	return &Journal{
		fs:     fs,
		path:   path,
		logger: logging.GetLogger("journal"),
		seen:   make(map[string]bool),
	}
}

// Open loads a journal left behind by a previous run, for offline
// rollback after a crash. A missing file yields an empty journal.
func Open(fs types.FS, path string) (*Journal, error) {
	j := New(fs, path)

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return j, nil
		}
		return nil, sessionerrors.Wrapf(err, sessionerrors.ErrJournalWrite, "failed to read journal %s", path)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry types.InstalledPath
		if err := json.Unmarshal(line, &entry); err != nil {
			// A torn final line from a crash is expected; anything
			// readable before it is still usable.
			j.logger.Warn().Err(err).Str("line", string(line)).Msg("Skipping unreadable journal line")
			continue
		}
		if !j.seen[entry.Path] {
			j.seen[entry.Path] = true
			j.entries = append(j.entries, entry)
		}
	}

	return j, nil
}

// Record appends a path to the journal and mirrors it to disk.
// Recording the same path twice is a no-op: only the first occurrence
// matters for rollback order.
func (j *Journal) Record(entry types.InstalledPath) error {
	if j.seen[entry.Path] {
		j.logger.Trace().Str("path", entry.Path).Msg("Path already journaled")
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrJournalWrite, "failed to encode journal entry")
	}

	if err := j.appendLine(line); err != nil {
		return err
	}

	j.seen[entry.Path] = true
	j.entries = append(j.entries, entry)

	j.logger.Debug().
		Str("path", entry.Path).
		Str("kind", string(entry.Kind)).
		Int("position", len(j.entries)).
		Msg("Recorded mutation")

	return nil
}

// appendLine writes one entry to the on-disk journal. The file is
// re-written whole through the FS abstraction; entries are small and
// the write happens at most once per installed path.
func (j *Journal) appendLine(line []byte) error {
	if err := j.fs.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrJournalWrite, "failed to create journal directory")
	}

	existing, err := j.fs.ReadFile(j.path)
	if err != nil && !os.IsNotExist(err) {
		return sessionerrors.Wrap(err, sessionerrors.ErrJournalWrite, "failed to read journal")
	}

	data := append(existing, line...)
	data = append(data, '\n')
	if err := j.fs.WriteFile(j.path, data, 0600); err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrJournalWrite, "failed to write journal")
	}
	return nil
}

// Entries returns the recorded paths in insertion order.
func (j *Journal) Entries() []types.InstalledPath {
	out := make([]types.InstalledPath, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of recorded paths.
func (j *Journal) Len() int {
	return len(j.entries)
}

// Replay undoes recorded mutations in reverse order: files are removed
// unconditionally, directories only when empty. Non-empty directories
// may hold content this run did not create, so they are left in place
// with a warning. Replay is best-effort and never fails: individual
// errors are logged and skipped so that rollback can never mask the
// failure that triggered it. It returns the entries actually undone.
func (j *Journal) Replay() []types.InstalledPath {
	var undone []types.InstalledPath

	for i := len(j.entries) - 1; i >= 0; i-- {
		entry := j.entries[i]

		switch entry.Kind {
		case types.KindDirectory:
			children, err := j.fs.ReadDir(entry.Path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				j.logger.Warn().Err(err).Str("path", entry.Path).Msg("Cannot inspect directory during rollback")
				continue
			}
			if len(children) > 0 {
				j.logger.Warn().Str("path", entry.Path).Int("children", len(children)).
					Msg("Directory not empty, leaving in place")
				continue
			}
			if err := j.fs.Remove(entry.Path); err != nil {
				j.logger.Warn().Err(err).Str("path", entry.Path).Msg("Failed to remove directory during rollback")
				continue
			}
			undone = append(undone, entry)

		default:
			if err := j.fs.Remove(entry.Path); err != nil {
				if !os.IsNotExist(err) {
					j.logger.Warn().Err(err).Str("path", entry.Path).Msg("Failed to remove file during rollback")
				}
				continue
			}
			undone = append(undone, entry)
		}
	}

	j.logger.Info().Int("undone", len(undone)).Int("recorded", len(j.entries)).Msg("Journal replayed")
	return undone
}

// Clear empties the journal and removes its on-disk file. Called only
// after a successful commit, or after a completed rollback.
func (j *Journal) Clear() error {
	j.entries = nil
	j.seen = make(map[string]bool)

	if err := j.fs.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return sessionerrors.Wrap(err, sessionerrors.ErrJournalWrite, "failed to remove journal file")
	}
	return nil
}
