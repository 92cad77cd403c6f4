package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Program is the name reported in version strings.
const Program = "lazyseq"

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes one build of the program.
type Info struct {
	Program   string    `json:"program"`
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	GoVersion string    `json:"go_version"`
	BuiltAt   time.Time `json:"built_at,omitzero"`
	Modified  bool      `json:"modified"`
}

// Get returns the build info, preferring link-time values over those
// recorded by the toolchain.
func Get() Info {
	return fromBuild(Version, Commit, BuildTime, readBuildInfo)
}

func readBuildInfo() (*debug.BuildInfo, bool) { return debug.ReadBuildInfo() }

func fromBuild(ver, commit, built string, read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Program: Program, Version: ver, Commit: commit}
	if t, err := time.Parse(time.RFC3339, built); err == nil {
		info.BuiltAt = t
	}

	bi, ok := read()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		case "vcs.time":
			if info.BuiltAt.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuiltAt = t
				}
			}
		}
	}
	return info
}

// Short returns the version with an abbreviated commit, e.g. "1.2.0+abc1234".
func (i Info) Short() string {
	if i.Commit == "" {
		return i.Version
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += ".dirty"
	}
	return i.Version + "+" + commit
}

// String formats the info as printed by --version.
func (i Info) String() string {
	var extra []string
	if i.GoVersion != "" {
		extra = append(extra, i.GoVersion)
	}
	if !i.BuiltAt.IsZero() {
		extra = append(extra, "built "+i.BuiltAt.UTC().Format(time.RFC3339))
	}
	if len(extra) == 0 {
		return fmt.Sprintf("%s %s", i.Program, i.Short())
	}
	return fmt.Sprintf("%s %s (%s)", i.Program, i.Short(), strings.Join(extra, ", "))
}
