// Package patterns provides the static conversation pattern bank used by the
// cascade's conversational tiers. The bank is process-wide, read-only after
// start, and has no per-tenant scoping.
package patterns

import (
	"math/rand"

	"github.com/fyrsmithlabs/answerd/internal/textmatch"
)

// DefaultSubstringScore is the score for substring containment when the
// caller passes zero.
const DefaultSubstringScore = 0.9

// Category maps a set of trigger phrases to a set of candidate responses.
// Conversational categories (greetings, gratitude, farewells, compliments,
// small talk) are eligible for the high-priority small-talk tier; the rest
// only match in the lower general tier.
type Category struct {
	Name           string
	Conversational bool
	Triggers       []string
	Responses      []string
}

// Match is a scored category hit.
type Match struct {
	Category string
	Score    float64
}

// Bank is a fixed set of categories.
type Bank struct {
	categories []Category
}

// NewBank returns a bank over the given categories, or the default bank when
// none are given.
func NewBank(categories ...Category) *Bank {
	if len(categories) == 0 {
		categories = defaultCategories
	}
	return &Bank{categories: categories}
}

// BestMatch scores question against every trigger phrase and returns the
// highest-scoring category. A phrase scores substringScore when either string
// contains the other after normalization, else the edit-distance ratio.
// conversationalOnly restricts matching to conversational categories.
func (b *Bank) BestMatch(question string, conversationalOnly bool, substringScore float64) (Match, bool) {
	if substringScore <= 0 {
		substringScore = DefaultSubstringScore
	}

	var (
		best  Match
		found bool
	)
	for _, cat := range b.categories {
		if conversationalOnly && !cat.Conversational {
			continue
		}
		for _, trigger := range cat.Triggers {
			score := textmatch.Ratio(question, trigger)
			if textmatch.Contains(question, trigger) && score < substringScore {
				score = substringScore
			}
			if !found || score > best.Score {
				best = Match{Category: cat.Name, Score: score}
				found = true
			}
		}
	}
	return best, found
}

// Response returns one of the category's candidate responses, drawn uniformly
// at random. Unknown categories yield an empty string.
func (b *Bank) Response(category string) string {
	for _, cat := range b.categories {
		if cat.Name != category || len(cat.Responses) == 0 {
			continue
		}
		return cat.Responses[rand.Intn(len(cat.Responses))]
	}
	return ""
}

// Responses returns the candidate list for a category, for callers that need
// to validate membership.
func (b *Bank) Responses(category string) []string {
	for _, cat := range b.categories {
		if cat.Name == category {
			return cat.Responses
		}
	}
	return nil
}
