// Command mgenc is the CLI driver for the ahead-of-time translator: it
// shells out to nothing, never retries, and maps diagnostics to process
// exit codes. The pipeline itself is a pure function from (source, target,
// preferences) to (artifact, diagnostics); this package only wires
// stdin/stdout/files and flags around it.
package main

import (
	"fmt"
	"os"

	"github.com/sunholo/mgenc/cmd/mgenc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
