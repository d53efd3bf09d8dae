// Command mosaic is a terminal tiling window manager: it splits the
// terminal into a tree of panes, each backed by its own shell, with
// keyboard-driven splitting, navigation and resizing.
package main

import (
	"github.com/mosaicwm/mosaic/internal/cli/cmd"
)

// Build-time variables, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	enableCrashForensics()

	cmd.SetBuildInfo(cmd.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})

	cmd.Execute()
}
