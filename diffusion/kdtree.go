package diffusion

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDTree is an exact NeighborSearcher backed by a gonum k-d tree. It beats
// BruteForce on low-dimensional inputs with many points. Ties in distance are
// broken by ascending index, so it returns the same lists as BruteForce even
// on lattices and duplicated points.
type KDTree struct{}

// Neighbors implements NeighborSearcher.
func (KDTree) Neighbors(points mat.Matrix, k int) ([][]int, error) {
	n, _ := points.Dims()
	if err := checkNeighborCount(n, k); err != nil {
		return nil, err
	}

	rows := denseRows(points)
	queries := make(indexedPoints, n)
	for i, row := range rows {
		queries[i] = indexedPoint{coords: row, index: i}
	}

	// kdtree.New reorders its input, so the tree gets its own copy
	tree := kdtree.New(append(indexedPoints(nil), queries...), false)

	indices := make([][]int, n)
	for i, query := range queries {
		keeper := kdtree.NewNKeeper(k)
		tree.NearestSet(keeper, query)
		found := keptCandidates(keeper.Heap)
		if len(found) < k {
			return nil, fmt.Errorf("k-d tree found %d neighbors for point %d, want %d: %w", len(found), i, k, ErrInvalidArgument)
		}

		// The NKeeper drops arbitrary members of a tie at the k-th distance,
		// so collect everything up to that distance and choose by index.
		radius := found[0].dist
		for _, c := range found {
			radius = max(radius, c.dist)
		}
		within := kdtree.NewDistKeeper(radius)
		tree.NearestSet(within, query)
		found = keptCandidates(within.Heap)

		sort.Slice(found, func(a, b int) bool {
			if found[a].dist != found[b].dist {
				return found[a].dist < found[b].dist
			}
			return found[a].idx < found[b].idx
		})

		indices[i] = make([]int, k)
		for j := 0; j < k; j++ {
			indices[i][j] = found[j].idx
		}
	}

	return indices, nil
}

// keptCandidates converts a keeper's heap to candidates, skipping the
// sentinel entries that carry no point.
func keptCandidates(heap kdtree.Heap) []candidate {
	found := make([]candidate, 0, len(heap))
	for _, kept := range heap {
		if kept.Comparable == nil {
			continue
		}
		found = append(found, candidate{dist: kept.Dist, idx: kept.Comparable.(indexedPoint).index})
	}
	return found
}

// indexedPoint is a kdtree.Comparable that remembers its row in the input.
type indexedPoint struct {
	coords kdtree.Point
	index  int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	return p.coords[d] - q.coords[d]
}

func (p indexedPoint) Dims() int { return len(p.coords) }

// Distance returns the squared Euclidean distance, as kdtree.Point does.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	return p.coords.Distance(q.coords)
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int                { return indexedPlane{points: p, dim: d}.Pivot() }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// indexedPlane orders points along a single dimension for median selection.
type indexedPlane struct {
	points indexedPoints
	dim    kdtree.Dim
}

func (p indexedPlane) Len() int { return len(p.points) }
func (p indexedPlane) Less(i, j int) bool {
	return p.points[i].coords[p.dim] < p.points[j].coords[p.dim]
}
func (p indexedPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p indexedPlane) Pivot() int    { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p indexedPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
