package testutil

import (
	"fmt"
	"strings"
)

// FakeRunner implements types.Runner with canned binaries and command
// outputs, recording every call.
type FakeRunner struct {
	// Binaries are the executables LookPath reports as present.
	Binaries map[string]bool

	// Outputs maps a full command line ("gpasswd -a deck autologin")
	// or a bare command name to its output.
	Outputs map[string]string

	// Errors maps a full command line or bare name to a failure.
	Errors map[string]error

	// Calls records every Run invocation as a full command line.
	Calls []string
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Binaries: make(map[string]bool),
		Outputs:  make(map[string]string),
		Errors:   make(map[string]error),
	}
}

func (r *FakeRunner) LookPath(name string) (string, error) {
	if r.Binaries[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

func (r *FakeRunner) Run(name string, args ...string) ([]byte, error) {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.Calls = append(r.Calls, cmdline)

	err, ok := r.Errors[cmdline]
	if !ok {
		err = r.Errors[name]
	}

	out, ok := r.Outputs[cmdline]
	if !ok {
		out = r.Outputs[name]
	}
	return []byte(out), err
}

// Called reports whether a command line was executed.
func (r *FakeRunner) Called(cmdline string) bool {
	for _, c := range r.Calls {
		if c == cmdline {
			return true
		}
	}
	return false
}
