// git-issue is a local, file-backed issue tracker.
package main

import (
	"fmt"
	"os"

	"github.com/uname-n/git-issue/internal/cmd"
)

var (
	run    = func() error { return cmd.Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		osExit(cmd.ExitCode(err))
	}
}
