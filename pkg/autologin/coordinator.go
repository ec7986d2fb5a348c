// Package autologin coordinates display-manager autologin changes:
// it detects the active manager, snapshots the prior configuration
// before mutating anything, and restores that snapshot on rollback.
package autologin

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/deckforge/sessionctl/pkg/displaymanager"
	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// Snapshot captures the display-manager state taken immediately
// before an autologin mutation. At most one exists per transaction.
type Snapshot struct {
	Manager displaymanager.Kind  `toml:"manager"`
	State   displaymanager.State `toml:"state"`
}

// Options configures a Coordinator.
type Options struct {
	FS           types.FS
	Runner       types.Runner
	Prefix       string
	Group        string
	Session      string
	SnapshotPath string
}

// Coordinator drives the adapter matching the host's display manager.
type Coordinator struct {
	opts     Options
	logger   zerolog.Logger
	adapter  displaymanager.Adapter
	snapshot *Snapshot
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	return &Coordinator{
		opts:   opts,
		logger: logging.GetLogger("autologin"),
	}
}

// detect selects the adapter once per run.
func (c *Coordinator) detect() (displaymanager.Adapter, error) {
	if c.adapter != nil {
		return c.adapter, nil
	}

	adapter, kind := displaymanager.Detect(c.opts.FS, c.opts.Runner, c.opts.Prefix, c.opts.Group, c.opts.Session)
	if kind == displaymanager.None {
		return nil, sessionerrors.New(sessionerrors.ErrNoDisplayManager,
			"no supported display manager found (lightdm, sddm, gdm)")
	}

	c.adapter = adapter
	c.logger.Info().Str("manager", string(kind)).Msg("Detected display manager")
	return adapter, nil
}

// Apply enables autologin for the account, snapshotting the prior
// state first so a rollback can restore it exactly. A host with no
// supported display manager yields the soft NO_DISPLAY_MANAGER
// outcome: the caller warns and the transaction may still commit.
func (c *Coordinator) Apply(account string) error {
	adapter, err := c.detect()
	if err != nil {
		return err
	}

	state, err := adapter.CurrentState(account)
	if err != nil {
		return err
	}

	snapshot := &Snapshot{Manager: adapter.Kind(), State: state}
	if err := c.persist(snapshot); err != nil {
		return err
	}
	c.snapshot = snapshot

	return adapter.EnableAutologin(account)
}

// Revert disables autologin directly. Uninstall's goal state is
// always "disabled", so no snapshot is taken.
func (c *Coordinator) Revert(account string) error {
	adapter, err := c.detect()
	if err != nil {
		return err
	}
	return adapter.DisableAutologin(account)
}

// HasSnapshot reports whether an autologin mutation has occurred.
// Absence means there is nothing to revert.
func (c *Coordinator) HasSnapshot() bool {
	return c.snapshot != nil
}

// Restore reverts the display manager to the snapshotted state.
// Called only during rollback.
func (c *Coordinator) Restore(account string) error {
	if c.snapshot == nil {
		return nil
	}

	adapter, err := c.detect()
	if err != nil {
		return err
	}

	if err := adapter.RestoreState(account, c.snapshot.State); err != nil {
		return err
	}

	c.logger.Info().Str("manager", string(c.snapshot.Manager)).Msg("Restored autologin state")
	return c.Discard()
}

// Discard drops the snapshot and its on-disk file. Called on commit
// or after a completed restore.
func (c *Coordinator) Discard() error {
	c.snapshot = nil
	if err := c.opts.FS.Remove(c.opts.SnapshotPath); err != nil && !os.IsNotExist(err) {
		return sessionerrors.Wrapf(err, sessionerrors.ErrInternal, "failed to remove snapshot %s", c.opts.SnapshotPath)
	}
	return nil
}

// persist writes the snapshot to stable storage so a crash between
// mutation and commit still leaves enough state for a manual restore.
func (c *Coordinator) persist(snapshot *Snapshot) error {
	data, err := toml.Marshal(snapshot)
	if err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrInternal, "failed to encode snapshot")
	}
	if err := c.opts.FS.MkdirAll(filepath.Dir(c.opts.SnapshotPath), 0755); err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrInternal, "failed to create snapshot directory")
	}
	if err := c.opts.FS.WriteFile(c.opts.SnapshotPath, data, 0600); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrInternal, "failed to write snapshot %s", c.opts.SnapshotPath)
	}
	return nil
}

// LoadSnapshot reads a snapshot left behind by a crashed run.
func LoadSnapshot(fs types.FS, path string) (*Snapshot, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, sessionerrors.Wrapf(err, sessionerrors.ErrInternal, "failed to read snapshot %s", path)
	}

	var snapshot Snapshot
	if err := toml.Unmarshal(data, &snapshot); err != nil {
		return nil, sessionerrors.Wrapf(err, sessionerrors.ErrInternal, "failed to decode snapshot %s", path)
	}
	return &snapshot, nil
}
