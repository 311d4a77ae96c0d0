package wordpress

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggestion tuning for mistyped term slugs.
const (
	MaxSuggestionDistance = 3
	MaxSuggestions        = 3
)

// SuggestTerms returns up to MaxSuggestions terms whose slug is within
// MaxSuggestionDistance edits of slug, closest first.
func SuggestTerms(terms []Term, slug string) []Term {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil
	}

	type scored struct {
		term Term
		dist int
	}
	var candidates []scored
	for _, t := range terms {
		d := levenshtein.ComputeDistance(slug, strings.ToLower(t.Slug))
		if d <= MaxSuggestionDistance {
			candidates = append(candidates, scored{t, d})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].term.Slug < candidates[j].term.Slug
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	out := make([]Term, len(candidates))
	for i, c := range candidates {
		out[i] = c.term
	}
	return out
}
