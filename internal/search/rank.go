package search

import (
	"strings"

	"github.com/ljos/budzilla/internal/search/fuzz"
)

// DefaultThreshold is the score an entry has to exceed to be shown.
const DefaultThreshold = 60

// CombinedText joins the searchable fields of e in the order the score is
// computed over: title, body, category, parent.
func CombinedText(e Entry) string {
	return strings.Join([]string{e.Title, e.Body, e.Category, e.Parent}, " ")
}

// Rank scores every entry against query and returns those scoring strictly
// above threshold, best first. Entries with equal scores keep their relative
// input order. Rank does not modify entries.
func Rank(query string, entries []Entry, threshold int) []ScoredEntry {
	out := make([]ScoredEntry, 0, len(entries))
	for _, e := range entries {
		score := fuzz.TokenSetRatio(query, CombinedText(e))
		if score > threshold {
			out = append(out, ScoredEntry{Entry: e, Score: score})
		}
	}
	SortResults(out)
	return out
}

// Limit truncates results to at most n entries. n <= 0 means no limit.
func Limit(results []ScoredEntry, n int) []ScoredEntry {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
