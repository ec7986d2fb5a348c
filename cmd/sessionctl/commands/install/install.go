package install

import (
	"github.com/spf13/cobra"

	"github.com/deckforge/sessionctl/pkg/commands"
	"github.com/deckforge/sessionctl/pkg/config"
	"github.com/deckforge/sessionctl/pkg/preflight"
)

// NewCommand creates the install command
func NewCommand() *cobra.Command {
	var (
		account       string
		skipAutologin bool
		assumeYes     bool
	)

	cmd := &cobra.Command{
		Use:     "install",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := preflight.CheckPrivilege(); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			resolved, err := commands.ResolveAccount(account)
			if err != nil {
				return err
			}

			return commands.Install(cmd.Context(), commands.Options{
				Config:        cfg,
				Account:       resolved,
				SkipAutologin: skipAutologin,
				AssumeYes:     assumeYes,
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Target account (default: the invoking user)")
	cmd.Flags().BoolVar(&skipAutologin, "skip-autologin", false, "Install files without touching display-manager config")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer prompts with their default")

	return cmd
}
