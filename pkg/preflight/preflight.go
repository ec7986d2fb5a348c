// Package preflight implements the advisory gates that run before a
// transaction: the privilege check and the prerequisite version
// check. Neither is part of the transaction itself.
package preflight

import (
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	sessionerrors "github.com/deckforge/sessionctl/pkg/errors"
	"github.com/deckforge/sessionctl/pkg/logging"
	"github.com/deckforge/sessionctl/pkg/types"
)

// geteuid is swappable for tests.
var geteuid = os.Geteuid

// CheckPrivilege verifies the process runs with root rights.
func CheckPrivilege() error {
	if geteuid() != 0 {
		return sessionerrors.New(sessionerrors.ErrNotRoot, "sessionctl must be run as root")
	}
	return nil
}

// Check is the outcome of one prerequisite version probe.
type Check struct {
	Name      string
	Minimum   string
	Installed string
	Missing   bool
	OK        bool
}

// versionPattern extracts the first dotted numeric run from a
// program's --version output.
var versionPattern = regexp.MustCompile(`\d+(\.\d+)*`)

// CheckVersions probes each prerequisite program and compares its
// reported version against the configured minimum. The result is
// advisory: callers decide whether to prompt or proceed.
func CheckVersions(runner types.Runner, prereqs map[string]string) []Check {
	logger := logging.GetLogger("preflight")

	var checks []Check
	for name, minimum := range prereqs {
		check := Check{Name: name, Minimum: minimum}

		if _, err := runner.LookPath(name); err != nil {
			check.Missing = true
			checks = append(checks, check)
			logger.Warn().Str("program", name).Msg("Prerequisite program not found")
			continue
		}

		out, err := runner.Run(name, "--version")
		if err != nil {
			check.Missing = true
			checks = append(checks, check)
			logger.Warn().Err(err).Str("program", name).Msg("Prerequisite version probe failed")
			continue
		}

		check.Installed = extractVersion(string(out))
		check.OK = acceptable(check.Installed, minimum, logger)
		checks = append(checks, check)

		logger.Debug().
			Str("program", name).
			Str("installed", check.Installed).
			Str("minimum", minimum).
			Bool("ok", check.OK).
			Msg("Checked prerequisite version")
	}

	return checks
}

// AllAcceptable reports whether every check passed.
func AllAcceptable(checks []Check) bool {
	for _, c := range checks {
		if c.Missing || !c.OK {
			return false
		}
	}
	return true
}

// extractVersion pulls the first dotted numeric run out of arbitrary
// --version output.
func extractVersion(out string) string {
	return versionPattern.FindString(out)
}

// acceptable compares versions after normalizing both to semver:
// the first three numeric segments, "v"-prefixed. Vendor suffixes and
// fourth-and-later segments are deliberately ignored.
func acceptable(installed, minimum string, logger zerolog.Logger) bool {
	iv := normalize(installed)
	mv := normalize(minimum)
	if !semver.IsValid(iv) || !semver.IsValid(mv) {
		logger.Warn().Str("installed", installed).Str("minimum", minimum).
			Msg("Cannot compare versions, treating as unacceptable")
		return false
	}
	return semver.Compare(iv, mv) >= 0
}

// normalize truncates a dotted version to three segments and adds the
// "v" prefix semver.Compare expects.
func normalize(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "v" + strings.Join(parts, ".")
}
