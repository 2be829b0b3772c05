// Package version exposes build metadata, set at link time with -ldflags "-X".
package version

import (
	"os"
	"path/filepath"
)

//nolint:gochecknoglobals // set by the linker
var (
	name    = ""
	version = "dev"
	commit  = "unknown"
)

// Name returns the program name, defaulting to the executable base name.
func Name() string {
	if name != "" {
		return name
	}

	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}

	return "ringdown"
}

// Version returns the release version.
func Version() string {
	return version
}

// Commit returns the source revision the binary was built from.
func Commit() string {
	return commit
}
