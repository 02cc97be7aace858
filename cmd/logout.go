package cmd

import (
	"fmt"
	"time"

	"github.com/ljos/budzilla/internal/config"
	"github.com/ljos/budzilla/internal/session"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached login session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(_ *cobra.Command, _ []string) error {
	path, err := config.SessionPath()
	if err != nil {
		return err
	}
	// TTL is irrelevant for clearing.
	store := session.NewFileStore(path, time.Hour)
	if err := store.Clear(); err != nil {
		return fmt.Errorf("cannot clear session: %w", err)
	}
	printOK(fmt.Sprintf("session cleared: %s", path))
	return nil
}
