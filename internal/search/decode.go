package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var entryFields = []string{"title", "body", "category", "parent"}

// ErrNotArray is returned when the response body is valid JSON but not an
// array of entries.
var ErrNotArray = errors.New("entries response is not a JSON array")

// DecodeEntries parses a JSON array of entry objects. Every object must carry
// title, body, category and parent as JSON strings; the first violation is
// returned as an *EntryFormatError. Unknown fields are ignored.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("cannot decode entries: %w", err)
	}
	if kind := jsonKind(raw); kind != "array" {
		return nil, fmt.Errorf("%w (got %s)", ErrNotArray, kind)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("cannot decode entries: %w", err)
	}

	out := make([]Entry, 0, len(items))
	for i, item := range items {
		if kind := jsonKind(item); kind != "object" {
			return nil, &EntryFormatError{Index: i, Got: kind}
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, fmt.Errorf("cannot decode entry %d: %w", i, err)
		}

		values := make(map[string]string, len(entryFields))
		for _, name := range entryFields {
			v, ok := fields[name]
			if !ok {
				return nil, &EntryFormatError{Index: i, Field: name}
			}
			if kind := jsonKind(v); kind != "string" {
				return nil, &EntryFormatError{Index: i, Field: name, Got: kind}
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("cannot decode entry %d field %q: %w", i, name, err)
			}
			values[name] = s
		}

		out = append(out, Entry{
			Title:    values["title"],
			Body:     values["body"],
			Category: values["category"],
			Parent:   values["parent"],
		})
	}
	return out, nil
}

func jsonKind(raw json.RawMessage) string {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return "nothing"
	}
	switch b[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
