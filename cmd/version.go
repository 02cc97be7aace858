package cmd

import (
	"fmt"
	"runtime"

	"github.com/ljos/budzilla/internal/config"
	"github.com/spf13/cobra"
)

// Set via -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show Budzilla version and build information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", emptyAsNA(commit))
	fmt.Printf("Build Date: %s\n", emptyAsNA(buildDate))
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	for _, p := range versionPaths() {
		fmt.Printf("%-11s %s\n", p[0]+":", p[1])
	}
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// versionPaths lists where this build keeps its state. --config wins over
// the default config location.
func versionPaths() [][2]string {
	home, err := config.HomeDir()
	if err != nil {
		home = "n/a (" + err.Error() + ")"
	}
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	logPath, _ := config.LogPath()
	return [][2]string{
		{"Home", home},
		{"Config", emptyAsNA(cfgPath)},
		{"Log", emptyAsNA(logPath)},
	}
}

func userAgent() string {
	return "budzilla/" + version
}
