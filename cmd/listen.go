package cmd

import (
	"os"

	"github.com/ljos/budzilla/internal/extension"
	"github.com/spf13/cobra"
)

var flagListenRefresh bool

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Serve launcher events over stdin/stdout",
	Long: `Read one JSON event per line from stdin and answer each with one JSON
line on stdout:

  {"type":"query","query":"milk"}       → {"type":"render","items":[...]}
  {"type":"item_enter","action":{...}}  → {"type":"hide"}

Logs go to ~/.budzilla/budzilla.log; stdout carries only responses.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().BoolVar(&flagListenRefresh, "refresh", false, "Bypass the response cache")
	rootCmd.AddCommand(listenCmd)
}

func runListen(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	a.logger.Info("listening", "version", version)
	err = extension.Run(ctx, os.Stdin, os.Stdout, a.handler(flagListenRefresh))
	if err != nil && ctx.Err() != nil {
		// Interrupted; not a failure.
		return nil
	}
	return err
}
