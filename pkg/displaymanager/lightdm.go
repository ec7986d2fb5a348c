package displaymanager

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// lightdmAdapter manages autologin through a drop-in fragment under
// lightdm.conf.d plus membership in the autologin system group.
type lightdmAdapter struct {
	fs      types.FS
	runner  types.Runner
	confDir string
	group   string
	session string
	logger  zerolog.Logger
}

// NewLightDM creates the LightDM adapter.
func NewLightDM(fs types.FS, runner types.Runner, prefix, group, session string) Adapter {
	return &lightdmAdapter{
		fs:      fs,
		runner:  runner,
		confDir: filepath.Join(prefix, "etc", "lightdm", "lightdm.conf.d"),
		group:   group,
		session: session,
		logger:  logging.GetLogger("lightdm"),
	}
}

func (l *lightdmAdapter) Kind() Kind {
	return LightDM
}

func (l *lightdmAdapter) IsActive() bool {
	_, err := l.runner.LookPath("lightdm")
	return err == nil
}

func (l *lightdmAdapter) fragmentPath() string {
	return filepath.Join(l.confDir, FragmentName)
}

func (l *lightdmAdapter) CurrentState(account string) (State, error) {
	state := State{Path: l.fragmentPath(), InGroup: l.inGroup(account)}

	data, err := l.fs.ReadFile(state.Path)
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

func (l *lightdmAdapter) EnableAutologin(account string) error {
	cfg := ini.Empty()
	seat, err := cfg.NewSection("Seat:*")
	if err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrDMConfig, "failed to build lightdm fragment")
	}
	seat.Key("autologin-user").SetValue(account)
	seat.Key("autologin-session").SetValue(l.session)

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrDMConfig, "failed to render lightdm fragment")
	}

	if err := l.fs.MkdirAll(l.confDir, 0755); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to create %s", l.confDir)
	}
	if err := l.fs.WriteFile(l.fragmentPath(), buf.Bytes(), 0644); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to write %s", l.fragmentPath())
	}

	// LightDM refuses autologin for accounts outside the autologin
	// group, so group membership is part of enabling.
	if out, err := l.runner.Run("groupadd", "-f", l.group); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "groupadd failed: %s", strings.TrimSpace(string(out)))
	}
	if out, err := l.runner.Run("gpasswd", "-a", account, l.group); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "gpasswd -a failed: %s", strings.TrimSpace(string(out)))
	}

	l.logger.Info().Str("account", account).Str("fragment", l.fragmentPath()).Msg("Enabled LightDM autologin")
	return nil
}

func (l *lightdmAdapter) DisableAutologin(account string) error {
	if err := l.fs.Remove(l.fragmentPath()); err != nil && !os.IsNotExist(err) {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to remove %s", l.fragmentPath())
	}

	// Only drop the group membership when no other fragment still
	// references the account: a pre-existing autologin setup outside
	// sessionctl's control must keep working.
	if l.otherFragmentReferences(account) {
		l.logger.Info().Str("account", account).Msg("Another autologin fragment references account, keeping group membership")
		return nil
	}

	if l.inGroup(account) {
		if out, err := l.runner.Run("gpasswd", "-d", account, l.group); err != nil {
			l.logger.Warn().Err(err).Str("output", strings.TrimSpace(string(out))).
				Str("account", account).Msg("Failed to remove account from autologin group")
		}
	}

	l.logger.Info().Str("account", account).Msg("Disabled LightDM autologin")
	return nil
}

func (l *lightdmAdapter) RestoreState(account string, state State) error {
	path := state.Path
	if path == "" {
		path = l.fragmentPath()
	}

	if state.Present {
		if err := l.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to create %s", filepath.Dir(path))
		}
		if err := l.fs.WriteFile(path, []byte(state.Content), 0644); err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to restore %s", path)
		}
	} else {
		if err := l.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to remove %s", path)
		}
	}

	if !state.InGroup && l.inGroup(account) && !l.otherFragmentReferences(account) {
		if out, err := l.runner.Run("gpasswd", "-d", account, l.group); err != nil {
			l.logger.Warn().Err(err).Str("output", strings.TrimSpace(string(out))).
				Str("account", account).Msg("Failed to restore autologin group membership")
		}
	}

	l.logger.Info().Str("account", account).Bool("present", state.Present).Msg("Restored LightDM autologin state")
	return nil
}

// inGroup reports whether the account is currently a member of the
// autologin group.
func (l *lightdmAdapter) inGroup(account string) bool {
	out, err := l.runner.Run("id", "-nG", account)
	if err != nil {
		return false
	}
	for _, g := range strings.Fields(string(out)) {
		if g == l.group {
			return true
		}
	}
	return false
}

// otherFragmentReferences scans the drop-in directory for fragments
// other than sessionctl's own that set autologin-user to the account.
func (l *lightdmAdapter) otherFragmentReferences(account string) bool {
	entries, err := l.fs.ReadDir(l.confDir)
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == FragmentName || !strings.HasSuffix(entry.Name(), ".conf") {
			continue
		}
		path := filepath.Join(l.confDir, entry.Name())
		data, err := l.fs.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := ini.Load(data)
		if err != nil {
			continue
		}
		for _, section := range cfg.Sections() {
			if section.Key("autologin-user").String() == account {
				return true
			}
		}
	}
	return false
}
