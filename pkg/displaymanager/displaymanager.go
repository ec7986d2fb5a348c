// Package displaymanager implements autologin configuration for the
// supported display managers. LightDM and SDDM use drop-in config
// fragments that can simply be written and deleted; GDM shares one
// config file with unrelated settings and therefore uses full-file
// backups for restore. That asymmetry is deliberate: collapsing GDM
// onto the drop-in pattern would lose rollback correctness.
package displaymanager

import "github.com/deckforge/sessionctl/pkg/types"

// Kind identifies a supported display manager.
type Kind string

const (
	LightDM Kind = "lightdm"
	SDDM    Kind = "sddm"
	GDM     Kind = "gdm"
	None    Kind = "none"
)

// FragmentName is the drop-in file sessionctl owns under the LightDM
// and SDDM config directories.
const FragmentName = "50-sessionctl-autologin.conf"

// State is an opaque-to-the-caller snapshot of a display manager's
// autologin configuration, taken before any mutation. It is TOML
// serializable so the coordinator can persist it across a crash.
type State struct {
	// Present reports whether the config artifact existed.
	Present bool `toml:"present"`

	// Path is the artifact the state describes: the drop-in fragment
	// for LightDM/SDDM, the shared custom.conf for GDM.
	Path string `toml:"path,omitempty"`

	// Content is the artifact's full content when Present.
	Content string `toml:"content,omitempty"`

	// InGroup reports whether the account was already a member of the
	// autologin group (LightDM only).
	InGroup bool `toml:"in_group,omitempty"`
}

// Adapter is the capability set every display manager supports.
type Adapter interface {
	// Kind identifies the adapter.
	Kind() Kind

	// IsActive probes for the manager's control binary.
	IsActive() bool

	// CurrentState captures the autologin configuration affecting the
	// account, before any mutation.
	CurrentState(account string) (State, error)

	// EnableAutologin configures the manager to log the account in
	// without a prompt.
	EnableAutologin(account string) error

	// DisableAutologin removes the autologin configuration.
	DisableAutologin(account string) error

	// RestoreState reverts the configuration to a previously captured
	// state.
	RestoreState(account string, state State) error
}

// Detect probes for a supported display manager in fixed priority
// order and returns its adapter, or nil and None when no manager is
// found. Detection happens once per run; first match wins.
func Detect(fs types.FS, runner types.Runner, prefix, group, session string) (Adapter, Kind) {
	adapters := []Adapter{
		NewLightDM(fs, runner, prefix, group, session),
		NewSDDM(fs, runner, prefix, session),
		NewGDM(fs, runner, prefix),
	}
	for _, a := range adapters {
		if a.IsActive() {
			return a, a.Kind()
		}
	}
	return nil, None
}
