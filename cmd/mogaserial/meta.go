package main

import (
	"cmp"
	"fmt"
	"runtime/debug"
	"strings"
)

// Release builds set these with -ldflags "-X main.version=...".
var version, commit, date string

type buildInfo struct {
	Version, Commit, Date string
}

// readBuildInfo fills in whatever the linker did not set from the module
// and VCS stamps of the binary.
func readBuildInfo() buildInfo {
	b := buildInfo{Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok {
		if b.Version == "" && info.Main.Version != "(devel)" {
			b.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value[:min(7, len(s.Value))]
			case s.Key == "vcs.time" && b.Date == "":
				b.Date, _, _ = strings.Cut(s.Value, "T")
			}
		}
	}
	b.Version = cmp.Or(b.Version, "dev")
	b.Commit = cmp.Or(b.Commit, "unknown")
	b.Date = cmp.Or(b.Date, "unknown")
	return b
}

func (b buildInfo) String() string {
	return fmt.Sprintf("mogaserial %s (%s, %s)", b.Version, b.Commit, b.Date)
}

func (b buildInfo) description() string {
	return "Moga controller to virtual gamepad bridge\n  " + b.String() +
		"\n  Source: https://github.com/Alia5/mogaserial"
}
