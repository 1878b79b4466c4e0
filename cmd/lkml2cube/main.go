// Package main provides the lkml2cube command-line tool.
package main

import (
	"errors"
	"os"

	"github.com/leapstack-labs/lkml2cube/internal/cli"
	"github.com/leapstack-labs/lkml2cube/internal/cli/commands"
)

func main() {
	os.Exit(exitCode(cli.Execute()))
}

// exitCode is 2 when only the --fail-on threshold was reached.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, commands.ErrFailOn):
		return 2
	default:
		return 1
	}
}
