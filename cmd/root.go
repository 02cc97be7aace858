package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "budzilla",
	Short:        "Budzilla launcher plugin: fuzzy-search your entries and copy them",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Budzilla logs in to the Budzilla service, fetches your entries and ranks
them against a query. Run 'budzilla listen' from a launcher, or
'budzilla query <text>' from a terminal.

Configuration lives in ~/.budzilla/budzilla.yaml; the password may instead
be kept in ~/.budzilla/.env as BUDZILLA_PASSWORD.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.budzilla/budzilla.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
