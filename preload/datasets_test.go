package preload

import (
	"errors"
	"math"
	"testing"

	"github.com/jrvmalik/manifold-learning/diffusion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTwoBlobs(t *testing.T) {
	dataset := TwoBlobs(50, 20, 0.5, 1)

	require.Equal(t, 100, dataset.Len())
	assert.Equal(t, "a", dataset.Labels[0])
	assert.Equal(t, "b", dataset.Labels[99])

	// Blob b sits far to the right of blob a
	assert.Less(t, dataset.Points.At(0, 0), 5.0)
	assert.Greater(t, dataset.Points.At(99, 0), 15.0)
}

func TestGenerators_Deterministic(t *testing.T) {
	first := SwissRoll(40, 0.05, 7)
	second := SwissRoll(40, 0.05, 7)
	assert.True(t, mat.Equal(first.Points, second.Points))
	assert.Equal(t, first.Labels, second.Labels)

	other := SwissRoll(40, 0.05, 8)
	assert.False(t, mat.Equal(first.Points, other.Points))
}

func TestCircle_OnUnitCircle(t *testing.T) {
	dataset := Circle(30, 0, 1)

	for i := 0; i < dataset.Len(); i++ {
		radius := math.Hypot(dataset.Points.At(i, 0), dataset.Points.At(i, 1))
		assert.InDelta(t, 1.0, radius, 1e-12)
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			dataset, err := ByName(name, 40, 3)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, dataset.Len(), 3)
			assert.Len(t, dataset.Labels, dataset.Len())
		})
	}

	_, err := ByName("spiral", 40, 3)
	assert.Error(t, err)
	_, err = ByName("circle", 2, 3)
	assert.Error(t, err)
}

func TestTriangle_MinimalEmbedding(t *testing.T) {
	dataset := Triangle()

	embedding, err := diffusion.Embed(dataset.Points, 2, 1)
	require.NoError(t, err)

	rows, cols := embedding.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, cols)

	_, err = diffusion.Embed(dataset.Points, 2, 2)
	assert.True(t, errors.Is(err, diffusion.ErrInvalidArgument))
}
