package cmd

import (
	"fmt"
	"runtime"
)

// Version information (set via ldflags during build)
var (
	BuildDate = "dev"
	GitCommit = "unknown"
)

// versionText is printed by --version
func versionText() string {
	return fmt.Sprintf("periodic - interval timer driven process spawner\n"+
		"Version:    %s\n"+
		"Git commit: %s\n"+
		"Go version: %s\n"+
		"OS/Arch:    %s/%s\n",
		BuildDate, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func init() {
	rootCmd.Version = BuildDate
	rootCmd.SetVersionTemplate(versionText())
}
