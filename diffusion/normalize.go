package diffusion

import (
	"fmt"
	"math"
)

// degrees returns the row sums of w. A zero or non-finite degree is reported
// as ErrDegenerateInput; it is never replaced with a fallback value.
func degrees(w *CSRMatrix, stage string) ([]float64, error) {
	sums := w.RowSums()
	for i, degree := range sums {
		if !(degree > 0) || math.IsInf(degree, 0) {
			return nil, fmt.Errorf("%s: point %d has degree %v: %w", stage, i, degree, ErrDegenerateInput)
		}
	}
	return sums, nil
}

// alphaNormalize applies the anisotropic correction with alpha = 1:
// W <- D^-1 W D^-1 where D holds the row sums of w.
func alphaNormalize(w *CSRMatrix) (*CSRMatrix, error) {
	degree, err := degrees(w, "alpha normalization")
	if err != nil {
		return nil, err
	}

	inverse := make([]float64, len(degree))
	for i, d := range degree {
		inverse[i] = 1 / d
	}
	return w.ScaleSym(inverse), nil
}

// diffusionOperator builds P = D'^-1/2 W D'^-1/2 from the alpha-normalized w,
// with D' recomputed from w. It also returns the diagonal of D'^-1/2, which
// maps eigenvectors of P back to diffusion coordinates.
func diffusionOperator(w *CSRMatrix) (*CSRMatrix, []float64, error) {
	degree, err := degrees(w, "operator normalization")
	if err != nil {
		return nil, nil, err
	}

	scale := make([]float64, len(degree))
	for i, d := range degree {
		scale[i] = 1 / math.Sqrt(d)
	}
	return w.ScaleSym(scale), scale, nil
}
