package search

import (
	"slices"
	"strings"
)

// Rankable is a record the keyword re-ranker can order.
type Rankable interface {
	RankTitle() string
	RankFeatured() bool
}

// Rerank orders records by how well their title matches keyword: titles
// starting with it first, then titles containing it, then the rest. Featured
// records win ties inside a tier and the incoming order is kept otherwise.
// The input slice is not modified.
func Rerank[T Rankable](records []T, keyword string) []T {
	out := slices.Clone(records)

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		if d := matchTier(a, keyword) - matchTier(b, keyword); d != 0 {
			return d
		}
		return featuredTier(a) - featuredTier(b)
	})

	return out
}

// ShouldRerank reports whether fs asks for keyword relevance ordering.
func ShouldRerank(fs FilterSet) bool {
	return fs.SortBy == SortRelevant && fs.Keyword != ""
}

func matchTier[T Rankable](r T, keyword string) int {
	title := strings.ToLower(r.RankTitle())
	switch {
	case strings.HasPrefix(title, keyword):
		return 0
	case strings.Contains(title, keyword):
		return 1
	default:
		return 2
	}
}

func featuredTier[T Rankable](r T) int {
	if r.RankFeatured() {
		return 0
	}
	return 1
}
