package displaymanager

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/paths"
	"github.com/deckforge/sessionctl/pkg/types"
)

// gdmAdapter edits GDM's shared custom.conf in place. Because that
// file carries unrelated settings, every mutation first writes a
// timestamped byte-for-byte backup, and restore rewrites the whole
// file from the captured original rather than toggling flags back.
type gdmAdapter struct {
	fs        types.FS
	runner    types.Runner
	confPaths []string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGDM creates the GDM adapter.
func NewGDM(fs types.FS, runner types.Runner, prefix string) Adapter {
	return &gdmAdapter{
		fs:     fs,
		runner: runner,
		confPaths: []string{
			filepath.Join(prefix, "etc", "gdm", "custom.conf"),
			filepath.Join(prefix, "etc", "gdm3", "custom.conf"),
		},
		logger: logging.GetLogger("gdm"),
		now:    time.Now,
	}
}

func (g *gdmAdapter) Kind() Kind {
	return GDM
}

func (g *gdmAdapter) IsActive() bool {
	for _, bin := range []string{"gdm", "gdm3"} {
		if _, err := g.runner.LookPath(bin); err == nil {
			return true
		}
	}
	return false
}

// locateConf returns the first custom.conf that exists, or the
// primary path and false when neither does.
func (g *gdmAdapter) locateConf() (string, bool) {
	for _, p := range g.confPaths {
		if _, err := g.fs.Stat(p); err == nil {
			return p, true
		}
	}
	return g.confPaths[0], false
}

func (g *gdmAdapter) CurrentState(account string) (State, error) {
	path, found := g.locateConf()
	state := State{Path: path}
	if !found {
		return state, nil
	}

	data, err := g.fs.ReadFile(path)
	if err != nil {
		return state, sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "cannot read %s", path)
	}

	state.Present = true
	state.Content = string(data)
	return state, nil
}

// backup writes a byte-for-byte copy of the config next to it with a
// timestamp suffix. Existing backups are never overwritten; a counter
// suffix disambiguates within the same second.
func (g *gdmAdapter) backup(path string, data []byte) (string, error) {
	base := fmt.Sprintf("%s.sessionctl-%s.bak", path, g.now().Format(paths.BackupTimeLayout))

	candidate := base
	for i := 1; ; i++ {
		if _, err := g.fs.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				break
			}
			return "", sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "cannot stat backup %s", candidate)
		}
		candidate = fmt.Sprintf("%s.%d", base, i)
	}

	if err := g.fs.WriteFile(candidate, data, 0644); err != nil {
		return "", sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to write backup %s", candidate)
	}

	g.logger.Info().Str("backup", candidate).Msg("Backed up GDM config")
	return candidate, nil
}

// mutate loads custom.conf, applies fn to its daemon section and
// writes the result back, backing the original up first.
func (g *gdmAdapter) mutate(fn func(section *ini.Section)) error {
	path, found := g.locateConf()

	var original []byte
	if found {
		data, err := g.fs.ReadFile(path)
		if err != nil {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "cannot read %s", path)
		}
		original = data
		if _, err := g.backup(path, data); err != nil {
			return err
		}
	}

	cfg, err := ini.Load(original)
	if err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "cannot parse %s", path)
	}

	fn(cfg.Section("daemon"))

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return sessionerrors.Wrap(err, sessionerrors.ErrDMConfig, "failed to render GDM config")
	}

	if err := g.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to create %s", filepath.Dir(path))
	}
	if err := g.fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to write %s", path)
	}

	return nil
}

func (g *gdmAdapter) EnableAutologin(account string) error {
	err := g.mutate(func(section *ini.Section) {
		section.Key("AutomaticLoginEnable").SetValue("True")
		section.Key("AutomaticLogin").SetValue(account)
	})
	if err != nil {
		return err
	}

	g.logger.Info().Str("account", account).Msg("Enabled GDM autologin")
	return nil
}

func (g *gdmAdapter) DisableAutologin(account string) error {
	if _, found := g.locateConf(); !found {
		g.logger.Debug().Msg("No GDM config present, nothing to disable")
		return nil
	}

	err := g.mutate(func(section *ini.Section) {
		section.Key("AutomaticLoginEnable").SetValue("False")
		section.Key("AutomaticLogin").SetValue("")
	})
	if err != nil {
		return err
	}

	g.logger.Info().Str("account", account).Msg("Disabled GDM autologin")
	return nil
}

func (g *gdmAdapter) RestoreState(account string, state State) error {
	path := state.Path
	if path == "" {
		path = g.confPaths[0]
	}

	if !state.Present {
		// The config did not exist before the mutation; undo means
		// removing whatever enable created.
		if err := g.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to remove %s", path)
		}
		g.logger.Info().Str("path", path).Msg("Removed GDM config created by this run")
		return nil
	}

	if err := g.fs.WriteFile(path, []byte(state.Content), 0644); err != nil {
		return sessionerrors.Wrapf(err, sessionerrors.ErrDMConfig, "failed to restore %s", path)
	}

	g.logger.Info().Str("path", path).Msg("Restored GDM config from pre-mutation snapshot")
	return nil
}
