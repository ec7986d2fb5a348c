package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/style"
)

func main() {
	// An interrupt mid-transaction must take the same rollback path as
	// any other failure: the controller watches this context between
	// plan steps.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(sessionerrors.ExitCode(err))
	}
}
