package recommender

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBuildMatrix(t *testing.T) {
	m, err := BuildMatrix(sampleObservations(), 1)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, m.Users)
	assert.Equal(t, []int64{10, 20, 30}, m.Items)

	expected := mat.NewDense(3, 3, []float64{
		5, 3, 0,
		4, 5, 2,
		5, 0, 4,
	})
	assert.True(t, mat.Equal(expected, m.Values))

	assert.True(t, m.HasRated(0, 0))
	assert.False(t, m.HasRated(0, 2), "missing cell must not count as rated")
	assert.False(t, m.HasRated(2, 1))

	assert.Equal(t, 1, m.UserRow(2))
	assert.Equal(t, -1, m.UserRow(42))
	assert.Equal(t, 2, m.ItemColumn(30))
	assert.Equal(t, -1, m.ItemColumn(40))
}

func TestBuildMatrix_ColumnsSpanAllUsers(t *testing.T) {
	obs := []Observation{
		{UserID: 1, ItemID: 5, Rating: 3},
		{UserID: 2, ItemID: 6, Rating: 4},
		{UserID: 2, ItemID: 7, Rating: 1},
	}

	m, err := BuildMatrix(obs, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7}, m.Items)

	rows, cols := m.Values.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 0.0, m.Values.At(0, 1))
}

func TestBuildMatrix_DuplicatesAveraged(t *testing.T) {
	obs := []Observation{
		{UserID: 1, ItemID: 10, Rating: 2},
		{UserID: 1, ItemID: 10, Rating: 4},
		{UserID: 2, ItemID: 10, Rating: 5},
	}

	m, err := BuildMatrix(obs, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.Values.At(0, 0))
	assert.True(t, m.HasRated(0, 0))
}

func TestBuildMatrix_InsufficientData(t *testing.T) {
	_, err := BuildMatrix(nil, 1)
	require.Error(t, err)
	assert.True(t, IsInsufficientData(err))

	_, err = BuildMatrix(sampleObservations(), 4)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(4), insufficient.UserID)
}

func TestNormalize(t *testing.T) {
	m, err := BuildMatrix(sampleObservations(), 1)
	require.NoError(t, err)

	got := Normalize(m.Values)
	expected := mat.NewDense(3, 3, []float64{
		1, 0.6, 0,
		0, 1, 0.5,
		1, 0, 1,
	})
	assert.True(t, mat.EqualApprox(expected, got, 1e-12))
}

func TestNormalize_ConstantColumnMapsToZero(t *testing.T) {
	obs := append(sampleObservations(),
		Observation{UserID: 1, ItemID: 40, Rating: 3},
		Observation{UserID: 2, ItemID: 40, Rating: 3},
		Observation{UserID: 3, ItemID: 40, Rating: 3},
	)
	m, err := BuildMatrix(obs, 1)
	require.NoError(t, err)

	col := m.ItemColumn(40)
	require.NotEqual(t, -1, col)

	got := Normalize(m.Values)
	for i := range m.Users {
		v := got.At(i, col)
		assert.False(t, math.IsNaN(v))
		assert.Equal(t, 0.0, v)
	}
}

func TestNormalize_AllZeroColumn(t *testing.T) {
	values := mat.NewDense(3, 2, []float64{
		0, 1,
		0, 2,
		0, 3,
	})

	got := Normalize(values)
	assert.Equal(t, []float64{0, 0, 0}, mat.Col(nil, 0, got))
	assert.Equal(t, []float64{0, 0.5, 1}, mat.Col(nil, 1, got))
}

func TestNormalize_BoundedForFiniteInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	extremes := []float64{math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64, 0, -1, 1e300, -1e300}

	for round := 0; round < 50; round++ {
		rows, cols := 1+rng.Intn(6), 1+rng.Intn(6)
		data := make([]float64, rows*cols)
		for i := range data {
			if rng.Intn(3) == 0 {
				data[i] = extremes[rng.Intn(len(extremes))]
			} else {
				data[i] = (rng.Float64() - 0.5) * 1e6
			}
		}

		got := Normalize(mat.NewDense(rows, cols, data))
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := got.At(i, j)
				assert.False(t, math.IsNaN(v))
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}
