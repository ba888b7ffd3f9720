// Command pie is a demonstration CLI over the pie incremental build
// engine: it wires the read -> lowercase -> write task chain from
// internal/tasks to the engine's top-down and bottom-up strategies,
// plus the optional YAML graph persistence and filesystem watch
// capabilities.
package main

import (
	"errors"
	"fmt"
	"os"

	"pie/internal/cliutil"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var invErr *cliutil.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
			os.Exit(invErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliutil.ExitBuildFailure)
	}
}
