// Package misc keeps program identity information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set at build time with -ldflags "-X cssdedup/misc.version=... -X cssdedup/misc.buildHash=...".
var (
	version   = "dev"
	buildHash = "unknown"
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns hash of the commit program was built from.
func GetGitHash() string {
	return buildHash
}

// GetAppName returns name of the executable without extension.
func GetAppName() string {
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}
