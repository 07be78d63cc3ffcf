package transform

import (
	"fmt"
	"math"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// SimilarityModel maps points by an isotropic scale, a rotation, and a
// translation. Two non-coincident matches constrain it.
type SimilarityModel struct {
	params geometry.AffineTransform
}

// Fit solves the weighted closed form for the linear part
// [a -b; b a] with a = Σw·dot / Σw‖ŝ‖² and b = Σw·cross / Σw‖ŝ‖² over the
// demeaned clouds, then the translation from the weighted centroids.
func (s *SimilarityModel) Fit(matches []match.PointMatch) error {
	if len(matches) < s.MinMatches() {
		return fmt.Errorf("similarity: %w: have %d, need %d",
			ErrInsufficientData, len(matches), s.MinMatches())
	}
	if match.TotalWeight(matches) <= 0 {
		return fmt.Errorf("similarity: %w: total weight is zero", ErrIllConditioned)
	}

	srcC, tgtC := match.Centroids(matches)

	var dotSum, crossSum, spread float64
	for _, m := range matches {
		src := m.Source.Sub(srcC)
		dst := m.Target.Sub(tgtC)
		dotSum += m.Weight * src.Dot(dst)
		crossSum += m.Weight * src.Cross(dst)
		spread += m.Weight * src.NormSquared()
	}
	if spread < spreadEpsilon {
		return fmt.Errorf("similarity: %w: coincident source points", ErrIllConditioned)
	}

	a := dotSum / spread
	b := crossSum / spread
	if math.Hypot(a, b) < 1e-12 {
		// All targets collapse onto the centroid: zero-scale geometry.
		return fmt.Errorf("similarity: %w: zero scale", ErrIllConditioned)
	}

	s.params = geometry.AffineTransform{
		A: a, B: -b, TX: tgtC.X - (a*srcC.X - b*srcC.Y),
		C: b, D: a, TY: tgtC.Y - (b*srcC.X + a*srcC.Y),
	}
	return nil
}

// Apply maps a point by the fitted similarity.
func (s *SimilarityModel) Apply(p geometry.Point2D) geometry.Point2D {
	return s.params.Apply(p)
}

// ApplyInverse maps a point back, failing with ErrNonInvertible at zero scale.
func (s *SimilarityModel) ApplyInverse(p geometry.Point2D) (geometry.Point2D, error) {
	inv, ok := s.params.Inverse()
	if !ok {
		return geometry.Point2D{}, fmt.Errorf("similarity: %w", ErrNonInvertible)
	}
	return inv.Apply(p), nil
}

// MinMatches returns 2.
func (s *SimilarityModel) MinMatches() int { return 2 }

// Scale returns the fitted isotropic scale factor.
func (s *SimilarityModel) Scale() float64 {
	return math.Hypot(s.params.A, s.params.C)
}

// AsAffine returns the fitted parameters as an affine matrix.
func (s *SimilarityModel) AsAffine() geometry.AffineTransform { return s.params }
