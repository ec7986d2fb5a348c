package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/sessionctl/pkg/commands"
	"github.com/deckforge/sessionctl/pkg/config"
	"github.com/deckforge/sessionctl/pkg/displaymanager"
	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/paths"
	"github.com/deckforge/sessionctl/pkg/session"
	"github.com/deckforge/sessionctl/pkg/testutil"
)

const sddmFragment = "/etc/sddm.conf.d/" + displaymanager.FragmentName

func testConfig() *config.Config {
	return &config.Config{
		Install:   config.Install{Prefix: "/", PayloadDir: "/payload"},
		Autologin: config.Autologin{Group: "autologin", Session: "gamescope-session"},
		Prereqs:   config.Prereqs{"gamescope": "3.12.0"},
	}
}

// seedPayload places every manifest file under /payload.
func seedPayload(t *testing.T, fs *testutil.MemoryFS) *session.Manifest {
	t.Helper()
	manifest, err := session.Load()
	require.NoError(t, err)
	for _, f := range manifest.Files {
		fs.MustWriteFile(f.SourcePath("/payload"), []byte("content of "+f.Source), 0644)
	}
	return manifest
}

func newRunner() *testutil.FakeRunner {
	runner := testutil.NewFakeRunner()
	runner.Binaries["sddm"] = true
	runner.Binaries["gamescope"] = true
	runner.Outputs["gamescope --version"] = "gamescope version 3.14.2"
	return runner
}

func TestInstallCommits(t *testing.T) {
	t.Setenv(paths.EnvStateDir, "/run/sessionctl")
	fs := testutil.NewMemoryFS()
	manifest := seedPayload(t, fs)

	err := commands.Install(context.Background(), commands.Options{
		Config:    testConfig(),
		FS:        fs,
		Runner:    newRunner(),
		Account:   "deck",
		AssumeYes: true,
	})
	require.NoError(t, err)

	for _, f := range manifest.Files {
		assert.True(t, fs.Exists(f.Destination), "%s should be installed", f.Destination)
	}
	assert.True(t, fs.Exists(sddmFragment))

	// Transient state removed on commit
	assert.False(t, fs.Exists(paths.JournalFile()))
	assert.False(t, fs.Exists(paths.SnapshotFile()))
}

func TestInstallRollsBackOnMissingSource(t *testing.T) {
	t.Setenv(paths.EnvStateDir, "/run/sessionctl")
	fs := testutil.NewMemoryFS()
	manifest := seedPayload(t, fs)

	// Break the last payload file so earlier installs must be undone
	last := manifest.Files[len(manifest.Files)-1]
	require.NoError(t, fs.Remove(last.SourcePath("/payload")))

	err := commands.Install(context.Background(), commands.Options{
		Config:    testConfig(),
		FS:        fs,
		Runner:    newRunner(),
		Account:   "deck",
		AssumeYes: true,
	})
	require.Error(t, err)
	assert.True(t, sessionerrors.IsErrorCode(err, sessionerrors.ErrSourceMissing))

	for _, f := range manifest.Files {
		assert.False(t, fs.Exists(f.Destination), "%s should have been rolled back", f.Destination)
	}
	assert.False(t, fs.Exists(sddmFragment))
}

func TestInstallWithoutDisplayManagerStillCommits(t *testing.T) {
	t.Setenv(paths.EnvStateDir, "/run/sessionctl")
	fs := testutil.NewMemoryFS()
	manifest := seedPayload(t, fs)

	runner := newRunner()
	delete(runner.Binaries, "sddm")

	err := commands.Install(context.Background(), commands.Options{
		Config:    testConfig(),
		FS:        fs,
		Runner:    runner,
		Account:   "deck",
		AssumeYes: true,
	})
	require.NoError(t, err)

	for _, f := range manifest.Files {
		assert.True(t, fs.Exists(f.Destination))
	}
	assert.False(t, fs.Exists(sddmFragment))
}

func TestUninstallIsIdempotent(t *testing.T) {
	t.Setenv(paths.EnvStateDir, "/run/sessionctl")
	fs := testutil.NewMemoryFS()
	seedPayload(t, fs)
	runner := newRunner()

	opts := commands.Options{
		Config:    testConfig(),
		FS:        fs,
		Runner:    runner,
		Account:   "deck",
		AssumeYes: true,
	}
	require.NoError(t, commands.Install(context.Background(), opts))

	require.NoError(t, commands.Uninstall(context.Background(), opts))
	assert.False(t, fs.Exists("/usr/bin/gamescope-session"))
	assert.False(t, fs.Exists(sddmFragment))

	// A second uninstall against the already-clean host succeeds too
	require.NoError(t, commands.Uninstall(context.Background(), opts))
}

func TestUninstallOnCleanHost(t *testing.T) {
	t.Setenv(paths.EnvStateDir, "/run/sessionctl")
	err := commands.Uninstall(context.Background(), commands.Options{
		Config:  testConfig(),
		FS:      testutil.NewMemoryFS(),
		Runner:  newRunner(),
		Account: "deck",
	})
	assert.NoError(t, err)
}
