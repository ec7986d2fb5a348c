// Package transaction orchestrates install and uninstall runs as one
// logical transaction: an ordered plan of steps that either all
// succeed or are undone exactly, in reverse order.
package transaction

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deckforge/sessionctl/pkg/autologin"
	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/journal"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// State is the controller's lifecycle state.
type State string

const (
	Idle       State = "idle"
	Running    State = "running"
	Committed  State = "committed"
	RolledBack State = "rolled-back"
)

// Step is one named unit of a transaction plan.
type Step struct {
	Name string
	Run  func() error
}

// Controller drives a plan of steps against the journal and the
// autologin coordinator. Exactly one transaction runs per process.
type Controller struct {
	journal     *journal.Journal
	coordinator *autologin.Coordinator
	account     string
	logger      zerolog.Logger
	state       State
	undone      []types.InstalledPath
}

// New creates a controller. The coordinator may be nil when the plan
// performs no autologin change.
func New(j *journal.Journal, coordinator *autologin.Coordinator, account string) *Controller {
	return &Controller{
		journal:     j,
		coordinator: coordinator,
		account:     account,
		logger:      logging.GetLogger("transaction"),
		state:       Idle,
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Undone returns the paths removed by the last rollback, for the
// user-facing rollback summary.
func (c *Controller) Undone() []types.InstalledPath {
	return c.undone
}

// Run executes the plan in order. Soft failures are logged and the
// plan continues; the first hard failure triggers rollback and is
// returned to the caller unchanged. Context cancellation (an external
// interrupt) takes the same rollback path as any other hard failure.
func (c *Controller) Run(ctx context.Context, steps []Step) error {
	c.state = Running

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			cause := sessionerrors.Wrap(err, sessionerrors.ErrInterrupted, "interrupted")
			c.rollback(cause)
			return cause
		}

		c.logger.Debug().Str("step", step.Name).Msg("Running step")

		if err := step.Run(); err != nil {
			if sessionerrors.IsSoft(err) {
				c.logger.Warn().Err(err).Str("step", step.Name).Msg("Step reported a soft outcome, continuing")
				continue
			}

			c.logger.Error().Err(err).Str("step", step.Name).Msg("Step failed, rolling back")
			c.rollback(err)
			return err
		}
	}

	return c.commit()
}

// commit finalizes a fully successful run: the journal and any
// autologin snapshot are discarded, nothing remains to undo.
func (c *Controller) commit() error {
	if err := c.journal.Clear(); err != nil {
		// The mutations themselves succeeded; a leftover journal only
		// risks a spurious offline rollback, so surface it loudly but
		// do not fail the run.
		c.logger.Warn().Err(err).Msg("Failed to clear journal after commit")
	}

	if c.coordinator != nil {
		if err := c.coordinator.Discard(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to discard autologin snapshot after commit")
		}
	}

	c.state = Committed
	c.logger.Info().Msg("Transaction committed")
	return nil
}

// rollback undoes the run in reverse: journal replay first (files,
// then their emptied parents), then the autologin snapshot. Rollback
// is best-effort; its own failures are logged and swallowed so the
// caller always sees the original cause.
func (c *Controller) rollback(cause error) {
	c.logger.Warn().Err(cause).Int("recorded", c.journal.Len()).Msg("Rolling back transaction")

	c.undone = c.journal.Replay()

	if c.coordinator != nil && c.coordinator.HasSnapshot() {
		if err := c.coordinator.Restore(c.account); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to restore autologin state during rollback")
		}
	}

	if err := c.journal.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear journal after rollback")
	}

	c.state = RolledBack
	c.logger.Info().Int("undone", len(c.undone)).Msg("Rollback complete")
}
