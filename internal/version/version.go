// Package version reports the irisql build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var fromBuildInfo sync.Once

// resolve fills in values left unset by ldflags from the module build info,
// which is present for "go install github.com/pthm/irisql/cmd/irisql@version".
func resolve() {
	fromBuildInfo.Do(func() {
		if Version != "dev" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		apply(info)
	})
}

func apply(info *debug.BuildInfo) {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			Commit = setting.Value
			if len(Commit) > 7 {
				Commit = Commit[:7]
			}
		case "vcs.time":
			Date = setting.Value
		}
	}
}

// Info returns formatted version information
func Info() string {
	resolve()
	return fmt.Sprintf("irisql %s (commit: %s, built: %s) %s",
		Version, Commit, Date, runtime.Version())
}

// Short returns just the version string
func Short() string {
	resolve()
	return Version
}
