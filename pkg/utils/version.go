// Package utils holds small helpers shared by the tutor commands.
package utils

import "runtime/debug"

// Set at link time with -ldflags "-X github.com/wahida/tutor/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildVersion returns Version, falling back to the module version recorded
// by `go install` when no version was linked in.
func BuildVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
