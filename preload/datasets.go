// Package preload generates small synthetic point sets for demos and tests.
// Every generator is deterministic for a given seed.
package preload

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/jrvmalik/manifold-learning/dataimport"
	"gonum.org/v1/gonum/mat"
)

// Names lists the datasets ByName understands.
func Names() []string {
	return []string{"blobs", "swissroll", "circle", "triangle"}
}

// ByName returns the named dataset with roughly n points.
func ByName(name string, n int, seed int64) (dataimport.Dataset, error) {
	if n < 3 && name != "triangle" {
		return dataimport.Dataset{}, fmt.Errorf("dataset %q needs at least 3 points, got %d", name, n)
	}
	switch name {
	case "blobs":
		return TwoBlobs(n/2, 20, 0.5, seed), nil
	case "swissroll":
		return SwissRoll(n, 0.05, seed), nil
	case "circle":
		return Circle(n, 0.02, seed), nil
	case "triangle":
		return Triangle(), nil
	default:
		return dataimport.Dataset{}, fmt.Errorf("unknown dataset %q (want one of %v)", name, Names())
	}
}

// TwoBlobs returns 2*nPer points in two Gaussian blobs centered at (0, 0) and
// (separation, 0). Rows of the first blob are labeled "a", the rest "b".
func TwoBlobs(nPer int, separation, sigma float64, seed int64) dataimport.Dataset {
	rng := rand.New(rand.NewSource(seed))
	points := mat.NewDense(2*nPer, 2, nil)
	labels := make([]string, 2*nPer)

	for i := 0; i < 2*nPer; i++ {
		centerX, label := 0.0, "a"
		if i >= nPer {
			centerX, label = separation, "b"
		}
		points.Set(i, 0, centerX+rng.NormFloat64()*sigma)
		points.Set(i, 1, rng.NormFloat64()*sigma)
		labels[i] = label
	}

	return dataimport.Dataset{Labels: labels, Points: points}
}

// SwissRoll returns n points on the classic rolled sheet in 3-D. Labels hold
// the roll parameter t rounded to two decimals, which a good embedding
// recovers as a smooth coordinate.
func SwissRoll(n int, noise float64, seed int64) dataimport.Dataset {
	rng := rand.New(rand.NewSource(seed))
	points := mat.NewDense(n, 3, nil)
	labels := make([]string, n)

	for i := 0; i < n; i++ {
		t := 1.5 * math.Pi * (1 + 2*rng.Float64())
		height := 21 * rng.Float64()
		points.Set(i, 0, t*math.Cos(t)+noise*rng.NormFloat64())
		points.Set(i, 1, height+noise*rng.NormFloat64())
		points.Set(i, 2, t*math.Sin(t)+noise*rng.NormFloat64())
		labels[i] = strconv.FormatFloat(t, 'f', 2, 64)
	}

	return dataimport.Dataset{Labels: labels, Points: points}
}

// Circle returns n evenly spaced points on the unit circle with radial noise.
func Circle(n int, noise float64, seed int64) dataimport.Dataset {
	rng := rand.New(rand.NewSource(seed))
	points := mat.NewDense(n, 2, nil)
	labels := make([]string, n)

	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		radius := 1 + noise*rng.NormFloat64()
		points.Set(i, 0, radius*math.Cos(angle))
		points.Set(i, 1, radius*math.Sin(angle))
		labels[i] = strconv.Itoa(i)
	}

	return dataimport.Dataset{Labels: labels, Points: points}
}

// Triangle returns the smallest point set the embedding accepts (n=3, with
// k=2 and d=1).
func Triangle() dataimport.Dataset {
	return dataimport.Dataset{
		Labels: []string{"p0", "p1", "p2"},
		Points: mat.NewDense(3, 2, []float64{
			0.0, 0.0,
			1.0, 0.0,
			0.5, 0.8,
		}),
	}
}
