package transform

import (
	"errors"
)

var (
	// ErrInsufficientData indicates fewer point matches than the model's
	// minimum were supplied.
	ErrInsufficientData = errors.New("not enough point matches")

	// ErrIllConditioned indicates a degenerate point configuration:
	// coincident or collinear points, zero total weight, or a system whose
	// solve would not be numerically meaningful.
	ErrIllConditioned = errors.New("ill-conditioned point configuration")

	// ErrNonInvertible indicates an inverse was requested from a transform
	// whose forward map is not bijective.
	ErrNonInvertible = errors.New("transform is not invertible")
)
