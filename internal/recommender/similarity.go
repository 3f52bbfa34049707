package recommender

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Neighbor is another user ranked by similarity to the target user.
type Neighbor struct {
	UserID     int64   `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|), or 0 when either vector has
// zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// SimilarityMatrix computes the cosine similarity of every pair of rows.
// The diagonal is 1 for non-zero rows and 0 for zero rows.
func SimilarityMatrix(vectors mat.Matrix) *mat.SymDense {
	n, _ := vectors.Dims()
	rows := make([][]float64, n)
	norms := make([]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, vectors)
		norms[i] = floats.Norm(rows[i], 2)
	}

	sim := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		sim.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			sim.SetSym(i, j, floats.Dot(rows[i], rows[j])/(norms[i]*norms[j]))
		}
	}

	return sim
}

// RankNeighbors picks the k users most similar to the user at row target.
// The target itself is never included. Ties are broken by ascending user id.
func RankNeighbors(sim mat.Symmetric, users []int64, target, k int) []Neighbor {
	neighbors := make([]Neighbor, 0, len(users))
	for i, id := range users {
		if i == target {
			continue
		}
		neighbors = append(neighbors, Neighbor{UserID: id, Similarity: sim.At(target, i)})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
