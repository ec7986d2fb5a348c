package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/deckforge/sessionctl/cmd/sessionctl/commands/install"
	"github.com/deckforge/sessionctl/cmd/sessionctl/commands/uninstall"
	"github.com/deckforge/sessionctl/internal/version"
	"github.com/deckforge/sessionctl/pkg/logging"
)

var verbosity int

// NewRootCmd builds the sessionctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessionctl",
		Short: "Install and remove the gamescope session",
		Long: `sessionctl installs the gamescope session files (startup scripts, a
polkit helper, a Wayland session entry) and configures display-manager
autologin, as one transaction: a failure mid-way rolls the host back to
its pre-install state.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(install.NewCommand())
	rootCmd.AddCommand(uninstall.NewCommand())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sessionctl version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
