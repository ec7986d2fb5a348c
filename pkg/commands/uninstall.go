package commands

import (
	"context"

	"github.com/deckforge/sessionctl/pkg/journal"
	"github.com/deckforge/sessionctl/pkg/operations"
	"github.com/deckforge/sessionctl/pkg/paths"
	"github.com/deckforge/sessionctl/pkg/session"
	"github.com/deckforge/sessionctl/pkg/style"
	"github.com/deckforge/sessionctl/pkg/transaction"
)

// Uninstall removes the session files and disables autologin. It is
// idempotent: missing files and an absent display manager are soft
// outcomes, so running it against a partially installed or already
// clean host still succeeds.
func Uninstall(ctx context.Context, opts Options) error {
	opts.fill()

	manifest, err := session.Load()
	if err != nil {
		return err
	}

	j := journal.New(opts.FS, paths.JournalFile())
	ops := operations.New(opts.FS, j)
	coordinator := newCoordinator(opts)
	controller := transaction.New(j, coordinator, opts.Account)

	// Removal runs in reverse install order.
	var steps []transaction.Step
	for i := len(manifest.Files) - 1; i >= 0; i-- {
		f := manifest.Files[i]
		destination := f.DestinationPath(opts.Config.Install.Prefix)
		steps = append(steps, transaction.Step{
			Name: "remove " + destination,
			Run: func() error {
				return ops.RemoveFile(destination)
			},
		})
	}

	if !opts.SkipAutologin {
		steps = append(steps, transaction.Step{
			Name: "disable autologin",
			Run: func() error {
				return coordinator.Revert(opts.Account)
			},
		})
	}

	if err := controller.Run(ctx, steps); err != nil {
		style.RollbackSummary(err, controller.Undone())
		return err
	}

	style.Success("gamescope session removed")
	return nil
}
