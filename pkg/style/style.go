// Package style centralizes sessionctl's user-facing terminal output:
// status lines, the rollback summary, and interactive prompts.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/deckforge/sessionctl/pkg/types"
)

// ErrorStyle renders fatal errors in main.
var ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"})

func init() {
	// pterm colors off when stdout is not a terminal or the terminal
	// reports no color support.
	if !isatty.IsTerminal(os.Stdout.Fd()) || termenv.ColorProfile() == termenv.Ascii {
		pterm.DisableColor()
	}
}

// Interactive reports whether prompts can be shown.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// Success prints a success status line.
func Success(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Warning prints a warning status line.
func Warning(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// Info prints an informational status line.
func Info(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

// RollbackSummary prints the original failure and what the rollback
// undid.
func RollbackSummary(cause error, undone []types.InstalledPath) {
	pterm.Error.Printfln("Installation failed: %v", cause)
	if len(undone) == 0 {
		pterm.Info.Printfln("Rollback: no filesystem changes needed undoing")
		return
	}
	pterm.Info.Printfln("Rollback undid %d change(s):", len(undone))
	for _, p := range undone {
		pterm.Info.Printfln("  removed %s (%s)", p.Path, p.Kind)
	}
}

// Confirm asks a yes/no question. Non-interactive sessions get the
// default answer without a prompt.
func Confirm(question string, defaultAnswer bool) bool {
	if !Interactive() {
		return defaultAnswer
	}
	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultAnswer).
		Show(question)
	if err != nil {
		return defaultAnswer
	}
	return answer
}

// AskAccount prompts for the target account name.
func AskAccount() (string, error) {
	if !Interactive() {
		return "", fmt.Errorf("cannot prompt for account in a non-interactive session")
	}
	return pterm.DefaultInteractiveTextInput.Show("Target account for the session")
}
