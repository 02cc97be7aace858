package search

import "fmt"

// Entry is one Budzilla record as returned by the entry endpoint.
type Entry struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Parent   string `json:"parent"`
}

// ScoredEntry pairs an entry with its relevance score in [0,100].
type ScoredEntry struct {
	Entry Entry
	Score int
}

// EntryFormatError reports an entry record that is missing a field or carries
// a field of the wrong type.
type EntryFormatError struct {
	Index int
	Field string
	Got   string
}

func (e *EntryFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entry %d: expected an object, got %s", e.Index, e.Got)
	}
	if e.Got == "" {
		return fmt.Sprintf("entry %d: missing field %q", e.Index, e.Field)
	}
	return fmt.Sprintf("entry %d: field %q must be a string, got %s", e.Index, e.Field, e.Got)
}
