package displaymanager

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// sddmAdapter manages autologin through a drop-in fragment under
// sddm.conf.d. Unlike LightDM there is no group side effect.
type sddmAdapter struct {
	fs      types.FS
	runner  types.Runner
	confDir string
	session string
	logger  zerolog.Logger
}

// NewSDDM creates the SDDM adapter.
func NewSDDM(fs types.FS, runner types.Runner, prefix, session string) Adapter {
	return &sddmAdapter{
		fs:      fs,
		runner:  runner,
		confDir: filepath.Join(prefix, "etc", "sddm.conf.d"),
		session: session,
		logger:  logging.GetLogger("sddm"),
	}
}

func (s *sddmAdapter) Kind() Kind {
	return SDDM
}

func (s *sddmAdapter) IsActive() bool {
	_, err := s.runner.LookPath("sddm")
	return err == nil
}

func (s *sddmAdapter) fragmentPath() string {
	return filepath.Join(s.confDir, FragmentName)
}

func (s *sddmAdapter) CurrentState(account string) (State, error) {
	state := State{Path: s.fragmentPath()}

	data, err := s.fs.ReadFile(state.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "cannot read %s", state.Path)
	}

	state.Present = true
	state.Content = string(data)
	return state, nil
}

func (s *sddmAdapter) EnableAutologin(account string) error {
	cfg := ini.Empty()
	section, err := cfg.NewSection("Autologin")
	if err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrDMConfig, "failed to build sddm fragment")
	}
	section.Key("User").SetValue(account)
	section.Key("Session").SetValue(s.session + ".desktop")
	section.Key("Relogin").SetValue("false")

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrDMConfig, "failed to render sddm fragment")
	}

	if err := s.fs.MkdirAll(s.confDir, 0755); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to create %s", s.confDir)
	}
	if err := s.fs.WriteFile(s.fragmentPath(), buf.Bytes(), 0644); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to write %s", s.fragmentPath())
	}

	s.logger.Info().Str("account", account).Str("fragment", s.fragmentPath()).Msg("Enabled SDDM autologin")
	return nil
}

func (s *sddmAdapter) DisableAutologin(account string) error {
	if err := s.fs.Remove(s.fragmentPath()); err != nil && !os.IsNotExist(err) {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to remove %s", s.fragmentPath())
	}

	s.logger.Info().Str("account", account).Msg("Disabled SDDM autologin")
	return nil
}

func (s *sddmAdapter) RestoreState(account string, state State) error {
	path := state.Path
	if path == "" {
		path = s.fragmentPath()
	}

	if state.Present {
		if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to create %s", filepath.Dir(path))
		}
		if err := s.fs.WriteFile(path, []byte(state.Content), 0644); err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to restore %s", path)
		}
	} else {
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to remove %s", path)
		}
	}

	s.logger.Info().Str("account", account).Bool("present", state.Present).Msg("Restored SDDM autologin state")
	return nil
}
