// Command streampref is a thin CLI that wires a fixed demo query over the
// preference-evaluation core for manual testing, per SPEC_FULL.md §0: it
// does not parse the CQL-like grammar (an out-of-scope external
// collaborator per spec.md §1) — it builds one query in Go and ticks it.
// Grounded on goProbe's cmd/goProbe/cmd package: a cobra root command with
// "run" and "serve" subcommands, sharing a small Config loaded once.
package main

import (
	"fmt"
	"os"

	"github.com/streampref/streampref/cmd/streampref/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
