package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/git-pkgs/outdated/internal/cli"
)

// version is injected via ldflags at build time.
var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		if !errors.Is(err, cli.ErrOutdated) {
			fmt.Fprintf(os.Stderr, "outdated: %v\n", err)
		}
		os.Exit(1)
	}
}
