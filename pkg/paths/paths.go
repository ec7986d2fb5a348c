// Package paths centralizes path handling for sessionctl: the
// transient transaction state files and their well-known locations.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvStateDir overrides the directory holding transaction state
	EnvStateDir = "SESSIONCTL_STATE_DIR"
)

// File names for transient transaction state. These are deleted on
// commit; their presence after a crash is the offline-rollback signal.
const (
	// JournalFileName is the append-only mutation journal
	JournalFileName = "journal.log"

	// SnapshotFileName is the pre-mutation autologin snapshot
	SnapshotFileName = "autologin-snapshot.toml"
)

// BackupTimeLayout is the timestamp suffix for GDM config backups.
const BackupTimeLayout = "20060102-150405"

// StateDir returns the directory for transient transaction state.
// Root runs use /run so state never survives a reboot; unprivileged
// runs (tests) fall back to the XDG runtime dir or the system temp dir.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	if os.Geteuid() == 0 {
		return "/run/sessionctl"
	}
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, "sessionctl")
	}
	return filepath.Join(os.TempDir(), "sessionctl")
}

// JournalFile returns the path of the on-disk mutation journal.
func JournalFile() string {
	return filepath.Join(StateDir(), JournalFileName)
}

// SnapshotFile returns the path of the autologin snapshot file.
func SnapshotFile() string {
	return filepath.Join(StateDir(), SnapshotFileName)
}
