package match

import (
	"cmp"
	"slices"
)

// MinSimilarity is the lowest normalized similarity Suggest reports.
const MinSimilarity = 0.5

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit candidates closest to name, best first. Ties
// keep alphabetical order; candidates below MinSimilarity are dropped.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 || name == "" {
		return nil
	}

	norm := Normalize(name)
	ranked := make([]scored, 0, len(candidates))

	for _, c := range candidates {
		if c == name {
			continue
		}

		s := Similarity(norm, Normalize(c))
		if s >= MinSimilarity {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	slices.SortFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}

		return cmp.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked[:min(limit, len(ranked))] {
		out = append(out, r.name)
	}

	return out
}
