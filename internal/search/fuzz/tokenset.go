// Package fuzz implements the token-set similarity score used to rank entries.
//
// Scores follow fuzzywuzzy's token_set_ratio (backed by python-Levenshtein):
// both strings are normalized, split into unique tokens, and compared as
// sorted intersection/remainder strings so that word order and repetition do
// not affect the result.
package fuzz

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Process normalizes s the way the score expects: code points 128-255 are
// dropped, every rune that is not a letter, number or underscore becomes a
// space, the result is lower-cased and trimmed.
func Process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 128 && r < 256:
			continue
		case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(lower.String(b.String()))
}

// TokenSetRatio returns a similarity score in [0,100] between s1 and s2.
// Either side normalizing to the empty string scores 0.
func TokenSetRatio(s1, s2 string) int {
	p1, p2 := Process(s1), Process(s2)
	if p1 == "" || p2 == "" {
		return 0
	}

	tokens1 := tokenSet(p1)
	tokens2 := tokenSet(p2)

	var sect, diff1to2, diff2to1 []string
	for tok := range tokens1 {
		if _, ok := tokens2[tok]; ok {
			sect = append(sect, tok)
		} else {
			diff1to2 = append(diff1to2, tok)
		}
	}
	for tok := range tokens2 {
		if _, ok := tokens1[tok]; !ok {
			diff2to1 = append(diff2to1, tok)
		}
	}

	sortedSect := joinSorted(sect)
	combined1to2 := strings.TrimSpace(sortedSect + " " + joinSorted(diff1to2))
	combined2to1 := strings.TrimSpace(sortedSect + " " + joinSorted(diff2to1))

	return max(
		Ratio(sortedSect, combined1to2),
		Ratio(sortedSect, combined2to1),
		Ratio(combined1to2, combined2to1),
	)
}

// Ratio is the normalized indel similarity of a and b in [0,100], rounded
// half to even. Two empty strings are identical.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	lensum := len(ra) + len(rb)
	if lensum == 0 {
		return 100
	}
	dist := indelDistance(ra, rb)
	// Divide before scaling: the quotient's rounding decides .5 ties.
	return int(math.RoundToEven(100 * (float64(lensum-dist) / float64(lensum))))
}

// indelDistance is the Levenshtein distance with substitutions costing 2,
// i.e. the number of insertions and deletions turning a into b.
func indelDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			cur[j] = min(prev[j], cur[j-1]) + 1
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}

func joinSorted(tokens []string) string {
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
