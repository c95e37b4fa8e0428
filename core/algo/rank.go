package algo

import "sort"

// Scored pairs an id with a score for ranking.
type Scored struct {
	ID    string
	Score float64
}

// RankScored sorts items by score in descending order, breaking ties by id,
// and returns the top 'limit' items. A negative limit returns everything.
func RankScored(items []Scored, limit int) []Scored {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
