package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/sessionctl/pkg/journal"
	"github.com/deckforge/sessionctl/pkg/testutil"
	"github.com/deckforge/sessionctl/pkg/types"
)

const journalPath = "/run/sessionctl/journal.log"

func TestRecordOrderAndIdempotence(t *testing.T) {
	fs := testutil.NewMemoryFS()
	j := journal.New(fs, journalPath)

	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions", Kind: types.KindDirectory}))
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions/gamescope-session.desktop", Kind: types.KindFile, Mode: 0644}))

	// Recording the same path again is a no-op
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions", Kind: types.KindDirectory}))

	entries := j.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "/usr/share/wayland-sessions", entries[0].Path)
	assert.Equal(t, "/usr/share/wayland-sessions/gamescope-session.desktop", entries[1].Path)
}

func TestRecordPersistsToDisk(t *testing.T) {
	fs := testutil.NewMemoryFS()
	j := journal.New(fs, journalPath)

	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/bin/gamescope-session", Kind: types.KindFile, Mode: 0755}))
	assert.True(t, fs.Exists(journalPath))

	// A fresh journal loaded from the same file sees the entry, as an
	// offline rollback after a crash would.
	reloaded, err := journal.Open(fs, journalPath)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())
	assert.Equal(t, "/usr/bin/gamescope-session", reloaded.Entries()[0].Path)
	assert.Equal(t, types.KindFile, reloaded.Entries()[0].Kind)
}

func TestOpenMissingFile(t *testing.T) {
	fs := testutil.NewMemoryFS()
	j, err := journal.Open(fs, journalPath)
	require.NoError(t, err)
	assert.Equal(t, 0, j.Len())
}

func TestOpenSkipsTornLine(t *testing.T) {
	fs := testutil.NewMemoryFS()
	fs.MustWriteFile(journalPath, []byte(
		`{"path":"/usr/bin/gamescope-session","kind":"file","mode":493}`+"\n"+
			`{"path":"/usr/share/way`), 0600)

	j, err := journal.Open(fs, journalPath)
	require.NoError(t, err)
	require.Equal(t, 1, j.Len())
	assert.Equal(t, "/usr/bin/gamescope-session", j.Entries()[0].Path)
}

func TestReplayReverseOrder(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/usr/share/wayland-sessions", 0755))
	fs.MustWriteFile("/usr/share/wayland-sessions/gamescope-session.desktop", []byte("entry"), 0644)

	j := journal.New(fs, journalPath)
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions", Kind: types.KindDirectory}))
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions/gamescope-session.desktop", Kind: types.KindFile, Mode: 0644}))

	undone := j.Replay()

	// File removed first, then the emptied directory
	require.Len(t, undone, 2)
	assert.Equal(t, "/usr/share/wayland-sessions/gamescope-session.desktop", undone[0].Path)
	assert.Equal(t, "/usr/share/wayland-sessions", undone[1].Path)
	assert.False(t, fs.Exists("/usr/share/wayland-sessions"))
}

func TestReplayLeavesNonEmptyDirectory(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/usr/share/wayland-sessions", 0755))
	fs.MustWriteFile("/usr/share/wayland-sessions/plasma.desktop", []byte("not ours"), 0644)
	fs.MustWriteFile("/usr/share/wayland-sessions/gamescope-session.desktop", []byte("ours"), 0644)

	j := journal.New(fs, journalPath)
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions", Kind: types.KindDirectory}))
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/share/wayland-sessions/gamescope-session.desktop", Kind: types.KindFile, Mode: 0644}))

	undone := j.Replay()

	// Only our file goes; the directory still holds foreign content
	require.Len(t, undone, 1)
	assert.True(t, fs.Exists("/usr/share/wayland-sessions"))
	assert.True(t, fs.Exists("/usr/share/wayland-sessions/plasma.desktop"))
	assert.False(t, fs.Exists("/usr/share/wayland-sessions/gamescope-session.desktop"))
}

func TestReplaySkipsAlreadyRemoved(t *testing.T) {
	fs := testutil.NewMemoryFS()
	j := journal.New(fs, journalPath)
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/bin/gamescope-session", Kind: types.KindFile, Mode: 0755}))

	// The file never existed (or something else removed it); replay
	// must not fail.
	undone := j.Replay()
	assert.Empty(t, undone)
}

func TestClear(t *testing.T) {
	fs := testutil.NewMemoryFS()
	j := journal.New(fs, journalPath)
	require.NoError(t, j.Record(types.InstalledPath{Path: "/usr/bin/gamescope-session", Kind: types.KindFile, Mode: 0755}))

	require.NoError(t, j.Clear())
	assert.Equal(t, 0, j.Len())
	assert.False(t, fs.Exists(journalPath))

	// Clearing twice is fine
	require.NoError(t, j.Clear())
}
