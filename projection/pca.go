package projection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ReduceDimensions projects points onto their leading principal components.
//
// High-dimensional inputs such as 768-dimensional text embeddings make
// neighbor search slow and distances less informative. Projecting onto the
// top components first keeps most of the variance and leaves local neighbor
// structure largely intact.
//
// The data matrix X (n x p) is centered column by column, then factorized
// with a thin SVD, X = U * Σ * V^T. The columns of V are the principal
// directions ordered by captured variance, so X * V[:, 0:components] is the
// reduced point set.
//
// components is capped at min(n, p). The input is not modified.
func ReduceDimensions(points mat.Matrix, components int) (*mat.Dense, error) {
	numberOfPoints, dimension := points.Dims()
	if components < 1 {
		return nil, fmt.Errorf("components must be positive, got %d", components)
	}
	components = min(components, numberOfPoints, dimension)

	centered := centerColumns(points)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD of %dx%d data did not converge", numberOfPoints, dimension)
	}

	var rightSingularVectors mat.Dense
	svd.VTo(&rightSingularVectors)
	principalComponents := rightSingularVectors.Slice(0, dimension, 0, components)

	var projected mat.Dense
	projected.Mul(centered, principalComponents)
	return &projected, nil
}

// centerColumns returns a copy of points with every column shifted to zero
// mean, so the first component passes through the centroid.
func centerColumns(points mat.Matrix) *mat.Dense {
	centered := mat.DenseCopyOf(points)
	numberOfPoints, dimension := centered.Dims()

	column := make([]float64, numberOfPoints)
	for j := 0; j < dimension; j++ {
		mat.Col(column, j, centered)
		columnMean := stat.Mean(column, nil)
		for i := range column {
			column[i] -= columnMean
		}
		centered.SetCol(j, column)
	}
	return centered
}
