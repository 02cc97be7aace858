package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ljos/budzilla/internal/extension"
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy <text...>",
	Short: "Copy the body of the best-matching entry to the clipboard",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)
}

func runCopy(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	h := a.handler(false)
	items := h.OnQuery(withRequestID(ctx), strings.Join(args, " "))
	best, err := bestCopyItem(items)
	if err != nil {
		return err
	}
	if err := h.OnItemEnter(best.Action); err != nil {
		return err
	}
	printOK(fmt.Sprintf("copied %q", best.Title))
	return nil
}

// bestCopyItem returns the first copyable item. When there is none, the
// explanatory item (if any) becomes the error.
func bestCopyItem(items []extension.Item) (extension.Item, error) {
	if len(items) == 0 {
		return extension.Item{}, errors.New("no matching entry")
	}
	if items[0].Action.Type != extension.ActionCopy {
		return extension.Item{}, fmt.Errorf("%s: %s", items[0].Title, items[0].Description)
	}
	return items[0], nil
}
