package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Output helpers shared by the terminal-facing commands. The launcher
// protocol (listen, query --format json) never goes through these.
//
// Icon semantics:
//   ✓  success
//   ✗  error (written to stderr)
//   ⚠  warning
//   ○  skipped
//   ~  neutral info

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	errMark  = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
)

// printSection prints a top-level section header, e.g. "=== Doctor ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

func printOK(msg string) {
	fmt.Printf("  %s  %s\n", okMark, msg)
}

// printErr prints an error line to stderr.
func printErr(msg string) {
	fmt.Fprintf(os.Stderr, "  %s  %s\n", errMark, msg)
}

func printWarn(msg string) {
	fmt.Printf("  %s  %s\n", warnMark, msg)
}

func printSkip(msg string) {
	fmt.Printf("  ○  %s\n", msg)
}

func printInfo(msg string) {
	fmt.Printf("  ~  %s\n", msg)
}

// renderTable writes rows under headers as a borderless, left-aligned table.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
