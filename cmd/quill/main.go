// Command quill compiles filters, queries and table definitions into
// parameterized SQL.
package main

import (
	"os"

	"github.com/coregx/quill/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
