package projection

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/mat"
)

// Partition groups the rows of coordinates into k clusters with k-means and
// returns each row's cluster index. Euclidean distance between diffusion
// coordinates approximates diffusion distance, so k-means on the embedding is
// spectral clustering on the neighbor graph.
//
// k-means seeds randomly; cluster indices are not stable across runs, only
// the grouping is.
func Partition(coordinates mat.Matrix, k int) ([]int, error) {
	numberOfPoints, _ := coordinates.Dims()
	if k < 1 || k > numberOfPoints {
		return nil, fmt.Errorf("cluster count %d out of range for %d points", k, numberOfPoints)
	}

	dataset := make(clusters.Observations, numberOfPoints)
	for i := range dataset {
		dataset[i] = clusters.Coordinates(mat.Row(nil, i, coordinates))
	}

	km := kmeans.New()
	partition, err := km.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	labels := make([]int, numberOfPoints)
	for i, observation := range dataset {
		labels[i] = partition.Nearest(observation)
	}
	return labels, nil
}
