package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// SystemConfigPath is the host-level override file.
const SystemConfigPath = "/etc/sessionctl/config.toml"

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Install holds the file-installation settings.
type Install struct {
	// Prefix is prepended to every destination path. "/" on real
	// hosts; tests point it at a scratch directory.
	Prefix string `koanf:"prefix"`

	// PayloadDir is where the session payload files ship.
	PayloadDir string `koanf:"payload_dir"`
}

// Autologin holds the display-manager autologin settings.
type Autologin struct {
	// Group is the system group LightDM requires autologin users
	// to belong to.
	Group string `koanf:"group"`

	// Session is the session name written into autologin fragments.
	Session string `koanf:"session"`
}

// Prereqs maps prerequisite program names to minimum versions for
// the advisory preflight gate.
type Prereqs map[string]string

// Config is the resolved sessionctl configuration.
type Config struct {
	Install   Install   `koanf:"install"`
	Autologin Autologin `koanf:"autologin"`
	Prereqs   Prereqs   `koanf:"prereqs"`
}

// Load resolves configuration from, in override order: embedded
// defaults, /etc/sessionctl/config.toml if present, and SESSIONCTL_*
// environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, sessionerrors.Wrap(err, sessionerrors.ErrConfigLoad, "failed to load embedded defaults")
	}

	if _, err := os.Stat(SystemConfigPath); err == nil {
		if err := k.Load(file.Provider(SystemConfigPath), toml.Parser()); err != nil {
			return nil, sessionerrors.Wrapf(err, sessionerrors.ErrConfigLoad, "failed to load %s", SystemConfigPath)
		}
	}

	err := k.Load(env.Provider("SESSIONCTL_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "SESSIONCTL_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, sessionerrors.Wrap(err, sessionerrors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, sessionerrors.Wrap(err, sessionerrors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	return &cfg, nil
}
