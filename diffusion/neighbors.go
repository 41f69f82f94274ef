package diffusion

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// NeighborSearcher finds the k nearest neighbors of every point in a set.
//
// Neighbors returns one slice per row of points, each holding k distinct row
// indices ordered from nearest to farthest under Euclidean distance. The query
// set is the point set itself, so a point is normally its own first neighbor.
type NeighborSearcher interface {
	Neighbors(points mat.Matrix, k int) ([][]int, error)
}

// BruteForce is an exact NeighborSearcher that compares every pair of points.
// Ties in distance are broken by ascending index.
type BruteForce struct{}

type candidate struct {
	dist float64
	idx  int
}

// Neighbors implements NeighborSearcher in O(n² p) time.
func (BruteForce) Neighbors(points mat.Matrix, k int) ([][]int, error) {
	n, _ := points.Dims()
	if err := checkNeighborCount(n, k); err != nil {
		return nil, err
	}

	rows := denseRows(points)
	indices := make([][]int, n)
	candidates := make([]candidate, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			candidates[j] = candidate{
				dist: squaredEuclidean(rows[i], rows[j]),
				idx:  j,
			}
		}
		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].dist != candidates[b].dist {
				return candidates[a].dist < candidates[b].dist
			}
			return candidates[a].idx < candidates[b].idx
		})

		indices[i] = make([]int, k)
		for j := 0; j < k; j++ {
			indices[i][j] = candidates[j].idx
		}
	}

	return indices, nil
}

func checkNeighborCount(n, k int) error {
	if k < 1 || k >= n {
		return fmt.Errorf("neighbor count k=%d must satisfy 1 <= k < n=%d: %w", k, n, ErrInvalidArgument)
	}
	return nil
}

// validateNeighbors checks a searcher's output before it is turned into a
// matrix: n rows of k distinct in-range indices.
func validateNeighbors(neighbors [][]int, n, k int) error {
	if len(neighbors) != n {
		return fmt.Errorf("searcher returned %d neighbor lists for %d points: %w", len(neighbors), n, ErrInvalidArgument)
	}
	seen := make(map[int]struct{}, k)
	for i, row := range neighbors {
		if len(row) != k {
			return fmt.Errorf("point %d has %d neighbors, want %d: %w", i, len(row), k, ErrInvalidArgument)
		}
		clear(seen)
		for _, j := range row {
			if j < 0 || j >= n {
				return fmt.Errorf("point %d has neighbor index %d out of range: %w", i, j, ErrInvalidArgument)
			}
			if _, dup := seen[j]; dup {
				return fmt.Errorf("point %d lists neighbor %d twice: %w", i, j, ErrInvalidArgument)
			}
			seen[j] = struct{}{}
		}
	}
	return nil
}

// denseRows copies each row of points into its own slice.
func denseRows(points mat.Matrix) [][]float64 {
	n, p := points.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, p)
		for j := range rows[i] {
			rows[i][j] = points.At(i, j)
		}
	}
	return rows
}

// squaredEuclidean computes the squared Euclidean distance. Ranking by it is
// the same as ranking by the distance itself.
func squaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
