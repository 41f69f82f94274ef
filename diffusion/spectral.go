package diffusion

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// eigenPair refers to one eigenvalue and its column in the eigenvector matrix.
type eigenPair struct {
	value  float64
	column int
}

// spectrum is what the extractor hands back to EmbedWithConfig.
type spectrum struct {
	coordinates *mat.Dense
	eigenvalues []float64
	trivial     float64
}

// extractCoordinates computes the d leading non-trivial eigenvectors of the
// operator and rescales them by scale, the diagonal of D'^-1/2.
//
// The trivial eigenvector of P is known in closed form: it is proportional to
// sqrt(degree), i.e. 1/scale, with eigenvalue 1. It is deflated out of the
// operator before the solve and its column is excluded by overlap, not by
// position. When eigenvalue 1 is repeated (a disconnected neighbor graph),
// the retained eigenvalue-1 directions are then the ones orthogonal to the
// stationary vector.
func extractCoordinates(operator *CSRMatrix, scale []float64, d int, unitNorm bool) (spectrum, error) {
	n, _ := operator.Dims()
	symmetric := operator.Symmetrized()

	stationary := make([]float64, n)
	for i, s := range scale {
		stationary[i] = 1 / s
	}
	floats.Scale(1/floats.Norm(stationary, 2), stationary)
	stationaryVector := mat.NewVecDense(n, stationary)

	trivial := mat.Inner(stationaryVector, symmetric, stationaryVector)

	deflated := mat.NewSymDense(n, nil)
	deflated.SymRankOne(symmetric, -trivial, stationaryVector)

	var eigen mat.EigenSym
	if ok := eigen.Factorize(deflated, true); !ok {
		return spectrum{}, fmt.Errorf("factorize %dx%d operator: %w", n, n, ErrNotConverged)
	}
	values := eigen.Values(nil)
	var vectors mat.Dense
	eigen.VectorsTo(&vectors)

	// The column most aligned with the stationary vector is the trivial one
	trivialColumn, bestOverlap := -1, -1.0
	for c := range values {
		overlap := math.Abs(mat.Dot(vectors.ColView(c), stationaryVector))
		if overlap > bestOverlap {
			trivialColumn, bestOverlap = c, overlap
		}
	}

	pairs := make([]eigenPair, 0, len(values)-1)
	for c, v := range values {
		if c != trivialColumn {
			pairs = append(pairs, eigenPair{value: v, column: c})
		}
	}
	sortByMagnitude(pairs)

	coordinates := mat.NewDense(n, d, nil)
	eigenvalues := make([]float64, d)
	column := make([]float64, n)
	for c, pair := range pairs[:d] {
		for i := 0; i < n; i++ {
			column[i] = scale[i] * vectors.At(i, pair.column)
		}
		if unitNorm {
			floats.Scale(1/floats.Norm(column, 2), column)
		}
		canonicalizeSign(column)
		coordinates.SetCol(c, column)
		eigenvalues[c] = pair.value
	}

	return spectrum{
		coordinates: coordinates,
		eigenvalues: eigenvalues,
		trivial:     trivial,
	}, nil
}

// sortByMagnitude orders pairs by decreasing |eigenvalue|, breaking ties by
// the larger signed value so +1 comes before -1.
func sortByMagnitude(pairs []eigenPair) {
	sort.SliceStable(pairs, func(a, b int) bool {
		ma, mb := math.Abs(pairs[a].value), math.Abs(pairs[b].value)
		if ma != mb {
			return ma > mb
		}
		return pairs[a].value > pairs[b].value
	})
}

// canonicalizeSign flips column so that its entry of largest magnitude is
// positive. Eigenvector sign is arbitrary; fixing it makes repeated runs
// comparable without changing the embedding's geometry.
func canonicalizeSign(column []float64) {
	largest := 0
	for i, v := range column {
		if math.Abs(v) > math.Abs(column[largest]) {
			largest = i
		}
	}
	if column[largest] < 0 {
		floats.Scale(-1, column)
	}
}
