// Package projection runs the full point-set pipeline around the diffusion map:
// optional PCA pre-reduction, the diffusion-map embedding itself, and optional
// k-means clustering of the resulting coordinates.
package projection

import (
	"fmt"

	"github.com/jrvmalik/manifold-learning/diffusion"
	"gonum.org/v1/gonum/mat"
)

// Unclustered is the cluster label of every point when clustering is off.
const Unclustered = -1

// Config holds the pipeline parameters.
type Config struct {
	Diffusion     diffusion.Config // Embedding parameters
	PCAComponents int              // Principal components kept before neighbor search (0: use raw points)
	Clusters      int              // k-means clusters on the embedding (0: no clustering)
}

// DefaultConfig returns the diffusion defaults with no pre-reduction and no
// clustering.
func DefaultConfig() Config {
	return Config{Diffusion: diffusion.DefaultConfig()}
}

// Point is one embedded input with its label and cluster.
type Point struct {
	Label       string    `json:"label"`
	Coordinates []float64 `json:"coordinates"`
	Cluster     int       `json:"cluster"`
}

// Result is the output of Project.
type Result struct {
	Points      []Point
	Eigenvalues []float64
}

// ProjectVectors is Project for raw embedding vectors, as returned by a text
// embedder or a vector store.
func ProjectVectors(vectors [][]float32, labels []string, config Config) (Result, error) {
	points, err := diffusion.FromVectors(vectors)
	if err != nil {
		return Result{}, err
	}
	return Project(points, labels, config)
}

// Project embeds points and attaches labels[i] to row i. Missing labels are
// left empty.
func Project(points mat.Matrix, labels []string, config Config) (Result, error) {
	input := points
	if config.PCAComponents > 0 {
		reduced, err := ReduceDimensions(points, config.PCAComponents)
		if err != nil {
			return Result{}, fmt.Errorf("pca: %w", err)
		}
		input = reduced
	}

	embedding, err := diffusion.EmbedWithConfig(input, config.Diffusion)
	if err != nil {
		return Result{}, fmt.Errorf("diffusion map: %w", err)
	}

	numberOfPoints, _ := embedding.Coordinates.Dims()
	clusterLabels := make([]int, numberOfPoints)
	if config.Clusters > 0 {
		clusterLabels, err = Partition(embedding.Coordinates, config.Clusters)
		if err != nil {
			return Result{}, fmt.Errorf("clustering: %w", err)
		}
	} else {
		for i := range clusterLabels {
			clusterLabels[i] = Unclustered
		}
	}

	projected := make([]Point, numberOfPoints)
	for i := range projected {
		projected[i] = Point{
			Label:       labelAt(labels, i),
			Coordinates: mat.Row(nil, i, embedding.Coordinates),
			Cluster:     clusterLabels[i],
		}
	}

	return Result{Points: projected, Eigenvalues: embedding.Eigenvalues}, nil
}

// labelAt safely retrieves a label, returning empty string if index is out of bounds.
func labelAt(labels []string, index int) string {
	if index < len(labels) {
		return labels[index]
	}
	return ""
}
