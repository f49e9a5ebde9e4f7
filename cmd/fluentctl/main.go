// Command fluentctl maintains Fluent (FTL) translation resources:
// generation from package manifests, canonical formatting, validation,
// cross-locale sync and orphan cleanup.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/fluentctl/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own diagnostics; only flag/usage errors
		// surface here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
