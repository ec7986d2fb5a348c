// Package commands implements the install and uninstall operations
// invoked by the CLI.
package commands

import (
	"context"

	"github.com/deckforge/sessionctl/pkg/autologin"
	"github.com/deckforge/sessionctl/pkg/config"
	"github.com/deckforge/sessionctl/pkg/displaymanager"
	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/filesystem"
	"github.com/deckforge/sessionctl/pkg/journal"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/operations"
	"github.com/deckforge/sessionctl/pkg/paths"
	"github.com/deckforge/sessionctl/pkg/preflight"
	"github.com/deckforge/sessionctl/pkg/session"
	"github.com/deckforge/sessionctl/pkg/style"
	"github.com/deckforge/sessionctl/pkg/transaction"
	"github.com/deckforge/sessionctl/pkg/types"
)

// Options carries everything a command run needs. Threading these
// explicitly keeps the packages free of ambient globals.
type Options struct {
	Config  *config.Config
	FS      types.FS
	Runner  types.Runner
	Account string

	// SkipAutologin leaves display-manager configuration untouched.
	SkipAutologin bool

	// AssumeYes answers every prompt with its default.
	AssumeYes bool
}

func (o *Options) fill() {
	if o.FS == nil {
		o.FS = filesystem.NewOS()
	}
	if o.Runner == nil {
		o.Runner = displaymanager.NewRunner()
	}
}

// newCoordinator builds the autologin coordinator for a run.
func newCoordinator(opts Options) *autologin.Coordinator {
	return autologin.New(autologin.Options{
		FS:           opts.FS,
		Runner:       opts.Runner,
		Prefix:       opts.Config.Install.Prefix,
		Group:        opts.Config.Autologin.Group,
		Session:      opts.Config.Autologin.Session,
		SnapshotPath: paths.SnapshotFile(),
	})
}

// Install installs the session files and enables autologin as one
// transaction. Any hard failure rolls the host back to its pre-install
// state and is returned unchanged.
func Install(ctx context.Context, opts Options) error {
	opts.fill()
	logger := logging.GetLogger("install")

	// Advisory version gate, outside the transaction.
	checks := preflight.CheckVersions(opts.Runner, opts.Config.Prereqs)
	if !preflight.AllAcceptable(checks) {
		for _, c := range checks {
			if c.Missing {
				style.Warning("Prerequisite %s not found", c.Name)
			} else if !c.OK {
				style.Warning("Prerequisite %s is %s, minimum is %s", c.Name, c.Installed, c.Minimum)
			}
		}
		if !opts.AssumeYes && !style.Confirm("Prerequisite checks failed, continue anyway?", false) {
			return sessionerrors.New(sessionerrors.ErrPrereqVersion, "prerequisite checks failed")
		}
		logger.Warn().Msg("Continuing despite failed prerequisite checks")
	}

	manifest, err := session.Load()
	if err != nil {
		return err
	}

	j := journal.New(opts.FS, paths.JournalFile())
	ops := operations.New(opts.FS, j)
	coordinator := newCoordinator(opts)
	controller := transaction.New(j, coordinator, opts.Account)

	var steps []transaction.Step
	for _, f := range manifest.Files {
		f := f
		mode, err := f.FileMode()
		if err != nil {
			return err
		}
		source := f.SourcePath(opts.Config.Install.PayloadDir)
		destination := f.DestinationPath(opts.Config.Install.Prefix)
		steps = append(steps, transaction.Step{
			Name: "install " + destination,
			Run: func() error {
				return ops.InstallFile(source, destination, mode)
			},
		})
	}

	if !opts.SkipAutologin {
		steps = append(steps, transaction.Step{
			Name: "enable autologin",
			Run: func() error {
				return coordinator.Apply(opts.Account)
			},
		})
	}

	if err := controller.Run(ctx, steps); err != nil {
		style.RollbackSummary(err, controller.Undone())
		return err
	}

	style.Success("gamescope session installed for %s", opts.Account)
	return nil
}
