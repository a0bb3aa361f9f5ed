// Package version reports the build identity of the tracksort binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at link time with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

const shortHashLen = 12

// Info is the resolved build identity.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Date    string `json:"date"    yaml:"date"`
}

// Get returns the build identity, filling an unset commit from the VCS
// stamp the Go toolchain embeds.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "<unknown>" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.Date == "<unknown>" {
				info.Date = setting.Value
			}
		}
	}

	if len(info.Commit) > shortHashLen {
		info.Commit = info.Commit[:shortHashLen]
	}

	return info
}

func (i Info) String() string {
	return fmt.Sprintf("tracksort %s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
