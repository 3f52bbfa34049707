package recommender

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Normalize rescales each column of values into [0, 1] using that column's
// observed min and max. A constant column maps to 0 everywhere.
func Normalize(values mat.Matrix) *mat.Dense {
	rows, cols := values.Dims()
	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)

	for j := 0; j < cols; j++ {
		mat.Col(col, j, values)
		lo, hi := floats.Min(col), floats.Max(col)
		if hi == lo {
			// already zeroed
			continue
		}

		span := hi - lo
		halved := math.IsInf(span, 0)
		if halved {
			// hi-lo overflowed; scale both terms down so the ratio stays finite
			span = hi/2 - lo/2
		}

		for i, v := range col {
			var scaled float64
			if halved {
				scaled = (v/2 - lo/2) / span
			} else {
				scaled = (v - lo) / span
			}
			out.Set(i, j, clampUnit(scaled))
		}
	}

	return out
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
