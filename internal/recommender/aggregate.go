package recommender

import "sort"

// ScoredItem is a candidate item with its neighbour mean rating.
type ScoredItem struct {
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"score"`
}

// Aggregate averages the raw ratings of the neighbour rows for every item,
// drops the items the user at row target has rated, and returns at most n
// items ordered by score descending then item id ascending.
func Aggregate(m *RatingMatrix, neighbors []Neighbor, target, n int) []ScoredItem {
	if len(neighbors) == 0 {
		return []ScoredItem{}
	}

	rows := make([]int, 0, len(neighbors))
	for _, nb := range neighbors {
		rows = append(rows, m.UserRow(nb.UserID))
	}

	scored := make([]ScoredItem, 0, len(m.Items))
	for j, itemID := range m.Items {
		if m.HasRated(target, j) {
			continue
		}

		var sum float64
		for _, i := range rows {
			sum += m.Values.At(i, j)
		}
		scored = append(scored, ScoredItem{ItemID: itemID, Score: sum / float64(len(rows))})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ItemID < scored[j].ItemID
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
