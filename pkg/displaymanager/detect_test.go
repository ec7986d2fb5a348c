package displaymanager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/sessionctl/pkg/displaymanager"
	"github.com/deckforge/sessionctl/pkg/testutil"
)

func detect(runner *testutil.FakeRunner) (displaymanager.Adapter, displaymanager.Kind) {
	return displaymanager.Detect(testutil.NewMemoryFS(), runner, "/", "autologin", "gamescope-session")
}

func TestDetectNone(t *testing.T) {
	adapter, kind := detect(testutil.NewFakeRunner())
	assert.Nil(t, adapter)
	assert.Equal(t, displaymanager.None, kind)
}

func TestDetectPriorityOrder(t *testing.T) {
	// All three present: LightDM wins
	runner := testutil.NewFakeRunner()
	runner.Binaries["lightdm"] = true
	runner.Binaries["sddm"] = true
	runner.Binaries["gdm"] = true

	adapter, kind := detect(runner)
	require.NotNil(t, adapter)
	assert.Equal(t, displaymanager.LightDM, kind)

	// Without LightDM, SDDM wins over GDM
	delete(runner.Binaries, "lightdm")
	_, kind = detect(runner)
	assert.Equal(t, displaymanager.SDDM, kind)

	delete(runner.Binaries, "sddm")
	_, kind = detect(runner)
	assert.Equal(t, displaymanager.GDM, kind)
}
