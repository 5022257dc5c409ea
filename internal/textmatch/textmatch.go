// Package textmatch provides the string-similarity primitives shared by the
// tenant catalog and the conversation pattern bank.
package textmatch

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Normalize lowercases s, strips punctuation and collapses whitespace so
// that "What's the return policy?" and "what is the return policy" compare
// closely.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Punctuation is dropped entirely.
		}
	}
	return strings.TrimSpace(b.String())
}

// Ratio returns a normalized edit-distance similarity in [0, 1] between the
// normalized forms of a and b. Identical strings score 1.0, disjoint strings
// approach 0.0.
func Ratio(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" && nb == "" {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}
	return 1.0 - float64(dist)/float64(longest)
}

// Contains reports whether either normalized string contains the other as a
// whole-word phrase. Matching on word boundaries keeps short triggers like
// "hi" from firing inside words like "ship". Used by pattern matching, where
// containment in either direction earns a fixed high score instead of the
// edit-distance ratio.
func Contains(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return containsPhrase(na, nb) || containsPhrase(nb, na)
}

func containsPhrase(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// Tokenize splits text into lowercase terms, dropping stopwords and terms
// shorter than three characters.
func Tokenize(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) > 2 && !stopwords[token] {
			filtered = append(filtered, token)
		}
	}
	return filtered
}

// Overlap returns the fraction of unique query tokens that appear in the
// candidate tokens, in [0, 1].
func Overlap(queryTokens, candidateTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0.0
	}
	candidateSet := make(map[string]bool, len(candidateTokens))
	for _, t := range candidateTokens {
		candidateSet[t] = true
	}
	matched := 0
	counted := make(map[string]bool, len(queryTokens))
	unique := 0
	for _, t := range queryTokens {
		if counted[t] {
			continue
		}
		counted[t] = true
		unique++
		if candidateSet[t] {
			matched++
		}
	}
	return float64(matched) / float64(unique)
}

var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"are": true, "was": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "this": true, "that": true, "these": true, "those": true,
	"you": true, "your": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
}
