package displaymanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/deckforge/sessionctl/pkg/displaymanager"
	"github.com/deckforge/sessionctl/pkg/testutil"
)

const lightdmFragment = "/etc/lightdm/lightdm.conf.d/" + displaymanager.FragmentName

func newLightDM(fs *testutil.MemoryFS, runner *testutil.FakeRunner) displaymanager.Adapter {
	return displaymanager.NewLightDM(fs, runner, "/", "autologin", "gamescope-session")
}

func TestLightDMIsActive(t *testing.T) {
	runner := testutil.NewFakeRunner()
	adapter := newLightDM(testutil.NewMemoryFS(), runner)
	assert.False(t, adapter.IsActive())

	runner.Binaries["lightdm"] = true
	assert.True(t, adapter.IsActive())
}

func TestLightDMEnable(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	adapter := newLightDM(fs, runner)

	require.NoError(t, adapter.EnableAutologin("deck"))

	data, err := fs.ReadFile(lightdmFragment)
	require.NoError(t, err)
	cfg, err := ini.Load(data)
	require.NoError(t, err)
	seat := cfg.Section("Seat:*")
	assert.Equal(t, "deck", seat.Key("autologin-user").String())
	assert.Equal(t, "gamescope-session", seat.Key("autologin-session").String())

	assert.True(t, runner.Called("groupadd -f autologin"))
	assert.True(t, runner.Called("gpasswd -a deck autologin"))
}

func TestLightDMCurrentStateNoFragment(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	runner.Outputs["id -nG deck"] = "deck wheel"
	adapter := newLightDM(fs, runner)

	state, err := adapter.CurrentState("deck")
	require.NoError(t, err)
	assert.False(t, state.Present)
	assert.False(t, state.InGroup)
}

func TestLightDMDisableDropsGroupMembership(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	runner.Outputs["id -nG deck"] = "deck wheel autologin"
	adapter := newLightDM(fs, runner)

	require.NoError(t, adapter.EnableAutologin("deck"))
	require.NoError(t, adapter.DisableAutologin("deck"))

	assert.False(t, fs.Exists(lightdmFragment))
	// No other fragment references deck, so membership goes too
	assert.True(t, runner.Called("gpasswd -d deck autologin"))
}

func TestLightDMDisableKeepsGroupWhenOtherFragmentReferences(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	runner.Outputs["id -nG deck"] = "deck autologin"
	adapter := newLightDM(fs, runner)

	// A pre-existing autologin setup outside sessionctl's control
	fs.MustWriteFile("/etc/lightdm/lightdm.conf.d/10-kiosk.conf",
		[]byte("[Seat:*]\nautologin-user = deck\n"), 0644)

	require.NoError(t, adapter.EnableAutologin("deck"))
	require.NoError(t, adapter.DisableAutologin("deck"))

	assert.False(t, fs.Exists(lightdmFragment))
	assert.False(t, runner.Called("gpasswd -d deck autologin"))
}

func TestLightDMRoundTrip(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	runner.Outputs["id -nG deck"] = "deck wheel"
	adapter := newLightDM(fs, runner)

	// Snapshot records "no fragment present, not in group"
	state, err := adapter.CurrentState("deck")
	require.NoError(t, err)
	require.False(t, state.Present)
	require.False(t, state.InGroup)

	require.NoError(t, adapter.EnableAutologin("deck"))
	require.True(t, fs.Exists(lightdmFragment))

	// After enable the account is in the group
	runner.Outputs["id -nG deck"] = "deck wheel autologin"

	require.NoError(t, adapter.RestoreState("deck", state))
	assert.False(t, fs.Exists(lightdmFragment))
	assert.True(t, runner.Called("gpasswd -d deck autologin"))
}

func TestLightDMRestorePreservesExistingFragment(t *testing.T) {
	fs := testutil.NewMemoryFS()
	runner := testutil.NewFakeRunner()
	adapter := newLightDM(fs, runner)

	original := "[Seat:*]\nautologin-user = guest\nautologin-session = cinnamon\n"
	fs.MustWriteFile(lightdmFragment, []byte(original), 0644)

	state, err := adapter.CurrentState("deck")
	require.NoError(t, err)
	require.True(t, state.Present)

	require.NoError(t, adapter.EnableAutologin("deck"))
	require.NoError(t, adapter.RestoreState("deck", state))

	data, err := fs.ReadFile(lightdmFragment)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}
