// Package buildinfo exposes the version details stamped at build time.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Stamped via ldflags, for example:
//
//	go build -ldflags "-X github.com/veldra/ghosttape/internal/infra/buildinfo.Version=v1.2.0"
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = ""

	// BuildTime is the build timestamp.
	BuildTime = ""
)

// Info is the resolved build description.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get resolves the build information. When ldflags were not provided it
// falls back to the VCS metadata the Go toolchain embeds into binaries
// built from a checkout.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// String renders a one-line version banner.
func String() string {
	info := Get()
	return fmt.Sprintf("%s (commit %s, built %s, %s)",
		info.Version, shortCommit(info.Commit), info.BuildTime, info.GoVersion)
}

// shortCommit abbreviates a full revision hash for display.
func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
