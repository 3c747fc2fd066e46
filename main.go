// Command dirmap reports the disk usage and age of the directories directly
// below a base directory.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/dirmap/internal/cli"
	"github.com/idelchi/dirmap/internal/dirmap"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Set by ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		if !errors.Is(err, dirmap.ErrNoMatches) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}
