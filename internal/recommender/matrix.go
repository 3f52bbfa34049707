package recommender

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Observation is one (user, item, rating) triple.
type Observation struct {
	UserID int64   `json:"user_id"`
	ItemID int64   `json:"item_id"`
	Rating float64 `json:"rating"`
}

// RatingBounds is the inclusive range a rating must fall in.
type RatingBounds struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the bounds
func (b RatingBounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// RatingMatrix is the dense user x item table built from observations.
// Rows follow Users and columns follow Items, both in ascending id order.
// Cells without an observation hold 0.
type RatingMatrix struct {
	Users  []int64
	Items  []int64
	Values *mat.Dense

	userIndex map[int64]int
	itemIndex map[int64]int
	observed  []bool // row-major, len(Users)*len(Items)
}

// ValidateObservations checks every rating is finite and, when bounds is
// non-nil, inside it.
func ValidateObservations(observations []Observation, bounds *RatingBounds) error {
	for i, o := range observations {
		switch {
		case math.IsNaN(o.Rating):
			return &InvalidObservationError{Index: i, Observation: o, Reason: "rating is not a number"}
		case math.IsInf(o.Rating, 0):
			return &InvalidObservationError{Index: i, Observation: o, Reason: "rating is not finite"}
		case bounds != nil && !bounds.Contains(o.Rating):
			return &InvalidObservationError{
				Index:       i,
				Observation: o,
				Reason:      "rating outside allowed range",
			}
		}
	}
	return nil
}

// BuildMatrix pivots observations into a RatingMatrix. Columns cover every item
// seen across all users so a neighbour's items stay representable even when
// targetUser never rated them. Duplicate (user, item) pairs are averaged.
func BuildMatrix(observations []Observation, targetUser int64) (*RatingMatrix, error) {
	if len(observations) == 0 {
		return nil, &InsufficientDataError{UserID: targetUser, Reason: "no observations"}
	}

	userIndex := make(map[int64]int)
	itemIndex := make(map[int64]int)
	for _, o := range observations {
		userIndex[o.UserID] = 0
		itemIndex[o.ItemID] = 0
	}
	if _, ok := userIndex[targetUser]; !ok {
		return nil, &InsufficientDataError{UserID: targetUser, Reason: "user has no ratings"}
	}

	users := sortedKeys(userIndex)
	items := sortedKeys(itemIndex)
	for i, id := range users {
		userIndex[id] = i
	}
	for j, id := range items {
		itemIndex[id] = j
	}

	rows, cols := len(users), len(items)
	sums := make([]float64, rows*cols)
	counts := make([]int, rows*cols)
	for _, o := range observations {
		cell := userIndex[o.UserID]*cols + itemIndex[o.ItemID]
		sums[cell] += o.Rating
		counts[cell]++
	}

	observed := make([]bool, rows*cols)
	for cell, n := range counts {
		if n > 0 {
			sums[cell] /= float64(n)
			observed[cell] = true
		}
	}

	return &RatingMatrix{
		Users:     users,
		Items:     items,
		Values:    mat.NewDense(rows, cols, sums),
		userIndex: userIndex,
		itemIndex: itemIndex,
		observed:  observed,
	}, nil
}

// UserRow returns the row index of a user, or -1 when absent
func (m *RatingMatrix) UserRow(userID int64) int {
	if i, ok := m.userIndex[userID]; ok {
		return i
	}
	return -1
}

// ItemColumn returns the column index of an item, or -1 when absent
func (m *RatingMatrix) ItemColumn(itemID int64) int {
	if j, ok := m.itemIndex[itemID]; ok {
		return j
	}
	return -1
}

// HasRated reports whether an observation exists for the (row, col) cell.
// This is distinct from the cell value, which is 0 both for "unrated" and for
// an explicit rating of 0.
func (m *RatingMatrix) HasRated(row, col int) bool {
	return m.observed[row*len(m.Items)+col]
}

func sortedKeys(set map[int64]int) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
