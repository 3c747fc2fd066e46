package dirmap

import "os"

//nolint:gochecknoglobals // Replaced in tests
var osReadDir = os.ReadDir
