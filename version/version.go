// Package version exposes build information injected at link time.
package version

import "runtime/debug"

// Overridden with -ldflags "-X github.com/farcloser/ecoguard/version.version=...".
//
//nolint:gochecknoglobals // set by the linker
var (
	name    = "ecoguard"
	version = ""
	commit  = ""
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, falling back to the module version recorded in the build info.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
