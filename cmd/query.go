package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ljos/budzilla/internal/extension"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var (
	flagQueryFormat  string
	flagQueryRefresh bool
	flagQueryLimit   int
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Rank entries against a query and print the matches",
	Long: `Rank all entries against the query and print those scoring above the
configured threshold, best first.

--format json prints a script-filter document that Alfred-style launchers
can consume directly; --format text is meant for terminals.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&flagQueryFormat, "format", "f", formatText, "Output format: json or text")
	queryCmd.Flags().BoolVar(&flagQueryRefresh, "refresh", false, "Bypass the response cache")
	queryCmd.Flags().IntVarP(&flagQueryLimit, "limit", "n", 0, "Maximum number of results (0 = config max_results)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagQueryFormat)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if cmd.Flags().Changed("limit") {
		a.cfg.MaxResults = flagQueryLimit
	}

	ctx, cancel := signalContext()
	defer cancel()

	items := a.handler(flagQueryRefresh).OnQuery(withRequestID(ctx), strings.Join(args, " "))

	if format == formatJSON {
		return extension.WriteScriptFilter(os.Stdout, items)
	}
	return extension.WriteText(os.Stdout, items, extension.ColorEnabled(os.Stdout))
}

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case formatJSON, formatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or text)", s)
	}
}
