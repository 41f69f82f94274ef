package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Config holds the parameters of a diffusion-map embedding.
type Config struct {
	Neighbors       int              // Nearest neighbors per point, including the point itself (default: 20)
	Dimensions      int              // Embedding dimensions d (default: 3)
	Searcher        NeighborSearcher // Neighbor search backend (default: BruteForce)
	UnitNormColumns bool             // Scale each output column to unit Euclidean norm
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		Neighbors:  20,
		Dimensions: 3,
		Searcher:   BruteForce{},
	}
}

// Result is a diffusion-map embedding together with its spectrum.
type Result struct {
	// Coordinates is n x d, one row per input point, columns ordered by
	// decreasing eigenvalue magnitude.
	Coordinates *mat.Dense

	// Eigenvalues[c] is the eigenvalue of the operator for column c.
	Eigenvalues []float64

	// TrivialEigenvalue is the eigenvalue of the discarded stationary
	// direction. It is 1 up to round-off.
	TrivialEigenvalue float64
}

// Embed computes the n x d diffusion-map embedding of points, using k nearest
// neighbors and brute-force search.
//
// Preconditions: n >= 2, 1 <= k < n, d >= 1, d+1 < n, all entries finite.
// Violations return ErrInvalidArgument.
func Embed(points mat.Matrix, k, d int) (*mat.Dense, error) {
	config := DefaultConfig()
	config.Neighbors = k
	config.Dimensions = d

	result, err := EmbedWithConfig(points, config)
	if err != nil {
		return nil, err
	}
	return result.Coordinates, nil
}

// EmbedWithConfig computes a diffusion-map embedding with custom parameters.
// It is a pure function of its inputs and keeps no state between calls.
func EmbedWithConfig(points mat.Matrix, config Config) (Result, error) {
	if points == nil {
		return Result{}, fmt.Errorf("nil point set: %w", ErrInvalidArgument)
	}
	n, _ := points.Dims()
	if err := validateInput(points, config); err != nil {
		return Result{}, err
	}

	searcher := config.Searcher
	if searcher == nil {
		searcher = BruteForce{}
	}

	// Step 1: k-nearest-neighbor relation
	neighbors, err := searcher.Neighbors(points, config.Neighbors)
	if err != nil {
		return Result{}, fmt.Errorf("neighbor search: %w", err)
	}
	if err := validateNeighbors(neighbors, n, config.Neighbors); err != nil {
		return Result{}, err
	}

	// Step 2: shared-neighbor affinity
	affinity := affinityMatrix(neighbors, n)

	// Step 3: alpha normalization
	normalized, err := alphaNormalize(affinity)
	if err != nil {
		return Result{}, err
	}

	// Step 4: symmetric diffusion operator
	operator, scale, err := diffusionOperator(normalized)
	if err != nil {
		return Result{}, err
	}

	// Step 5: eigenvectors back to diffusion coordinates
	decomposition, err := extractCoordinates(operator, scale, config.Dimensions, config.UnitNormColumns)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Coordinates:       decomposition.coordinates,
		Eigenvalues:       decomposition.eigenvalues,
		TrivialEigenvalue: decomposition.trivial,
	}, nil
}

// validateInput checks the preconditions that do not depend on the searcher.
func validateInput(points mat.Matrix, config Config) error {
	n, p := points.Dims()
	if n < 2 {
		return fmt.Errorf("need at least 2 points, got %d: %w", n, ErrInvalidArgument)
	}
	if p < 1 {
		return fmt.Errorf("points have dimension %d: %w", p, ErrInvalidArgument)
	}
	if err := checkNeighborCount(n, config.Neighbors); err != nil {
		return err
	}
	if config.Dimensions < 1 || config.Dimensions+1 >= n {
		return fmt.Errorf("dimensions d=%d must satisfy 1 <= d and d+1 < n=%d: %w", config.Dimensions, n, ErrInvalidArgument)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			if v := points.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point %d coordinate %d is %v: %w", i, j, v, ErrInvalidArgument)
			}
		}
	}
	return nil
}

// FromVectors converts row vectors into an n x p matrix. All vectors must
// have the same non-zero length.
func FromVectors[T float32 | float64](vectors [][]T) (*mat.Dense, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors: %w", ErrInvalidArgument)
	}
	p := len(vectors[0])
	if p == 0 {
		return nil, fmt.Errorf("vector 0 is empty: %w", ErrInvalidArgument)
	}

	data := make([]float64, 0, len(vectors)*p)
	for i, vector := range vectors {
		if len(vector) != p {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w", i, len(vector), p, ErrInvalidArgument)
		}
		for _, v := range vector {
			data = append(data, float64(v))
		}
	}
	return mat.NewDense(len(vectors), p, data), nil
}
