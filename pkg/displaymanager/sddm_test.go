package displaymanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/deckforge/sessionctl/pkg/displaymanager"
	"github.com/deckforge/sessionctl/pkg/testutil"
)

const sddmFragment = "/etc/sddm.conf.d/" + displaymanager.FragmentName

func newSDDM(fs *testutil.MemoryFS, runner *testutil.FakeRunner) displaymanager.Adapter {
	return displaymanager.NewSDDM(fs, runner, "/", "gamescope-session")
}

func TestSDDMEnable(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	adapter := newSDDM(fs, runner)

	require.NoError(t, adapter.EnableAutologin("deck"))

	data, err := fs.ReadFile(sddmFragment)
	require.NoError(t, err)
	cfg, err := ini.Load(data)
	require.NoError(t, err)
	section := cfg.Section("Autologin")
	assert.Equal(t, "deck", section.Key("User").String())
	assert.Equal(t, "gamescope-session.desktop", section.Key("Session").String())

	// No group side effect, unlike LightDM
	assert.Empty(t, runner.Calls)
}

func TestSDDMDisableIdempotent(t *testing.T) {
	fs := testutil.NewMemoryFS()
	adapter := newSDDM(fs, testutil.NewFakeRunner())

	require.NoError(t, adapter.EnableAutologin("deck"))
	require.NoError(t, adapter.DisableAutologin("deck"))
	assert.False(t, fs.Exists(sddmFragment))

	// Disabling again is a no-op
	require.NoError(t, adapter.DisableAutologin("deck"))
}

func TestSDDMRoundTrip(t *testing.T) {
	fs := testutil.NewMemoryFS()
	adapter := newSDDM(fs, testutil.NewFakeRunner())

	state, err := adapter.CurrentState("deck")
	require.NoError(t, err)
	require.False(t, state.Present)

	require.NoError(t, adapter.EnableAutologin("deck"))
	require.True(t, fs.Exists(sddmFragment))

	// Restoring the pre-enable snapshot leaves no fragment behind
	require.NoError(t, adapter.RestoreState("deck", state))
	assert.False(t, fs.Exists(sddmFragment))
}
