package commands

import (
	"os"
	"os/user"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/style"
)

// ResolveAccount determines the target account for the session. Runs
// under sudo resolve to the invoking user; a plain root session with
// no originating identity is ambiguous and prompts interactively.
func ResolveAccount(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if su := os.Getenv("SUDO_USER"); su != "" && su != "root" {
		return su, nil
	}

	if u, err := user.Current(); err == nil && u.Username != "" && u.Username != "root" {
		return u.Username, nil
	}

	account, err := style.AskAccount()
	if err != nil {
		return "", sessionerrors.Wrap(err, sessionerrors.ErrInternal,
			"target account is ambiguous, pass --account")
	}
	if account == "" {
		return "", sessionerrors.New(sessionerrors.ErrInternal, "no target account given")
	}
	return account, nil
}
