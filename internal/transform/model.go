// Package transform implements the coordinate transform model family used for
// slice registration: translation, rigid, similarity, affine, and a
// moving-least-squares local deformation. Models are fit to weighted point
// matches and never mutated directly.
package transform

import (
	"fmt"
	"strings"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// Model is a fittable coordinate transform.
type Model interface {
	// Fit estimates the model parameters from weighted point matches,
	// minimizing the weighted sum of squared residuals. It returns
	// ErrInsufficientData when fewer than MinMatches matches are given and
	// ErrIllConditioned on degenerate configurations.
	Fit(matches []match.PointMatch) error

	// Apply maps a point from source to target space.
	Apply(p geometry.Point2D) geometry.Point2D

	// MinMatches returns the minimum number of point matches required to
	// constrain the model's degrees of freedom.
	MinMatches() int
}

// Invertible is a Model whose forward map can be reversed.
type Invertible interface {
	Model

	// ApplyInverse maps a point from target back to source space. It
	// returns ErrNonInvertible when the forward map is not bijective.
	ApplyInverse(p geometry.Point2D) (geometry.Point2D, error)
}

// Linear is a Model expressible as a single global 2x3 affine matrix. The
// moving-least-squares model is the one family member that is not Linear.
type Linear interface {
	Model

	// AsAffine returns the fitted parameters as an affine matrix.
	AsAffine() geometry.AffineTransform
}

// Kind tags the members of the model family and dispatches construction and
// minimum-match lookup without reflection.
type Kind int

const (
	Translation Kind = iota
	Rigid
	Similarity
	Affine
	MovingLeastSquares
)

// String returns the lower-case name used in configs and CLI flags.
func (k Kind) String() string {
	switch k {
	case Translation:
		return "translation"
	case Rigid:
		return "rigid"
	case Similarity:
		return "similarity"
	case Affine:
		return "affine"
	case MovingLeastSquares:
		return "mls"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a model name as accepted by String.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "translation":
		return Translation, nil
	case "rigid":
		return Rigid, nil
	case "similarity":
		return Similarity, nil
	case "affine":
		return Affine, nil
	case "mls", "moving-least-squares":
		return MovingLeastSquares, nil
	default:
		return 0, fmt.Errorf("unknown model kind %q", name)
	}
}

// MinMatches returns the minimum match count for the kind. For
// MovingLeastSquares this is the default base model's minimum.
func (k Kind) MinMatches() int {
	switch k {
	case Translation:
		return 1
	case Rigid, Similarity:
		return 2
	case Affine:
		return 3
	case MovingLeastSquares:
		return defaultMLSBase.MinMatches()
	default:
		return 0
	}
}

// New constructs an unfitted model of the kind. MovingLeastSquares is built
// with its defaults; use NewMLS to pick the base model and falloff.
func (k Kind) New() Model {
	switch k {
	case Translation:
		return &TranslationModel{}
	case Rigid:
		return &RigidModel{}
	case Similarity:
		return &SimilarityModel{}
	case Affine:
		return &AffineModel{}
	case MovingLeastSquares:
		return NewMLS(defaultMLSBase, defaultMLSAlpha)
	default:
		return nil
	}
}
