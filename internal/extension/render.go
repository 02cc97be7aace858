package extension

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// scriptFilter is the item list format understood by Alfred-style
// launchers.
type scriptFilter struct {
	Items []scriptFilterItem `json:"items"`
}

type scriptFilterItem struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Arg      string `json:"arg,omitempty"`
	Valid    bool   `json:"valid"`
}

// WriteScriptFilter writes items as a script-filter document. Only copy
// items are selectable; their arg is the text to copy.
func WriteScriptFilter(w io.Writer, items []Item) error {
	doc := scriptFilter{Items: make([]scriptFilterItem, 0, len(items))}
	for _, it := range items {
		sf := scriptFilterItem{Title: it.Title, Subtitle: it.Description}
		if it.Action.Type == ActionCopy {
			sf.Arg = it.Action.Text
			sf.Valid = true
		}
		doc.Items = append(doc.Items, sf)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteText writes items as numbered, human-readable lines.
func WriteText(w io.Writer, items []Item, colorize bool) error {
	title := color.New(color.FgCyan, color.Bold)
	desc := color.New(color.Faint)
	num := color.New(color.FgYellow)
	if colorize {
		title.EnableColor()
		desc.EnableColor()
		num.EnableColor()
	} else {
		title.DisableColor()
		desc.DisableColor()
		num.DisableColor()
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(w, desc.Sprint("no matches"))
		return err
	}
	for i, it := range items {
		if _, err := fmt.Fprintf(w, "%s %s\n", num.Sprintf("%2d.", i+1), title.Sprint(it.Title)); err != nil {
			return err
		}
		if it.Description != "" {
			if _, err := fmt.Fprintf(w, "    %s\n", desc.Sprint(it.Description)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
