package diffusion

import "errors"

// Sentinel errors returned by this package. They are wrapped with context, so
// callers should match them with errors.Is.
var (
	// ErrInvalidArgument is returned when k or d is out of range for the number
	// of points, the point set is empty or contains NaN/Inf, or a searcher
	// produced a malformed neighbor list.
	ErrInvalidArgument = errors.New("diffusion: invalid argument")

	// ErrDegenerateInput is returned when a point has zero degree at either
	// normalization stage and the division by its degree is undefined.
	ErrDegenerateInput = errors.New("diffusion: degenerate input")

	// ErrNotConverged is returned when the symmetric eigendecomposition fails.
	ErrNotConverged = errors.New("diffusion: eigendecomposition did not converge")
)
