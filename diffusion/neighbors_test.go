package diffusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBruteForce_Neighbors(t *testing.T) {
	points := mat.NewDense(4, 2, []float64{
		0.0, 0.0,
		1.0, 0.0,
		2.1, 0.0,
		3.3, 0.0,
	})

	neighbors, err := BruteForce{}.Neighbors(points, 2)
	require.NoError(t, err)

	want := [][]int{{0, 1}, {1, 0}, {2, 1}, {3, 2}}
	assert.Equal(t, want, neighbors)
}

func TestBruteForce_TiesBrokenByIndex(t *testing.T) {
	points := mat.NewDense(3, 1, []float64{-1, 0, 1})

	neighbors, err := BruteForce{}.Neighbors(points, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, neighbors[1])
}

func TestNeighborSearchers_RejectInvalidK(t *testing.T) {
	points := uniformPoints(5, 2, 1)
	searchers := map[string]NeighborSearcher{
		"brute":  BruteForce{},
		"kdtree": KDTree{},
	}

	for name, searcher := range searchers {
		t.Run(name, func(t *testing.T) {
			for _, k := range []int{0, -1, 5, 6} {
				_, err := searcher.Neighbors(points, k)
				assert.ErrorIs(t, err, ErrInvalidArgument, "k=%d", k)
			}
		})
	}
}

func TestKDTree_MatchesBruteForce(t *testing.T) {
	tests := []struct {
		name string
		n, p int
		k    int
	}{
		{name: "plane", n: 80, p: 2, k: 6},
		{name: "space", n: 120, p: 3, k: 15},
		{name: "high dimension", n: 50, p: 9, k: 4},
		{name: "all points", n: 10, p: 2, k: 9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			points := uniformPoints(tc.n, tc.p, int64(tc.n))

			brute, err := BruteForce{}.Neighbors(points, tc.k)
			require.NoError(t, err)
			tree, err := KDTree{}.Neighbors(points, tc.k)
			require.NoError(t, err)

			assert.Equal(t, brute, tree)
		})
	}
}

func TestKDTree_MatchesBruteForceOnTies(t *testing.T) {
	// A 7x7 integer lattice: most neighbor lists tie at the k-th distance.
	grid := mat.NewDense(49, 2, nil)
	for i := 0; i < 49; i++ {
		grid.Set(i, 0, float64(i%7))
		grid.Set(i, 1, float64(i/7))
	}
	// Every point twice, so distance-zero ties include a non-self point.
	duplicated := mat.NewDense(20, 2, nil)
	for i := 0; i < 20; i++ {
		duplicated.Set(i, 0, float64((i%10)%4))
		duplicated.Set(i, 1, float64((i%10)/4))
	}

	tests := []struct {
		name   string
		points *mat.Dense
		ks     []int
	}{
		{name: "lattice", points: grid, ks: []int{2, 4, 5, 8, 9}},
		{name: "duplicates", points: duplicated, ks: []int{1, 2, 3, 6}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range tc.ks {
				brute, err := BruteForce{}.Neighbors(tc.points, k)
				require.NoError(t, err)
				tree, err := KDTree{}.Neighbors(tc.points, k)
				require.NoError(t, err)

				assert.Equal(t, brute, tree, "k=%d", k)
			}
		})
	}
}

func TestNeighbors_SelfFirst(t *testing.T) {
	points := uniformPoints(20, 3, 4)

	neighbors, err := KDTree{}.Neighbors(points, 3)
	require.NoError(t, err)

	for i, row := range neighbors {
		assert.Equal(t, i, row[0], "point %d", i)
	}
}
