package cli

import "github.com/idelchi/dirmap/internal/dirmap"

//nolint:gochecknoglobals // Replaced in tests
var dirmapRun = dirmap.Run
