package transform

import (
	"fmt"
	"math"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// spreadEpsilon rejects fits whose demeaned source cloud has essentially no
// extent; rotation is unconstrained below it.
const spreadEpsilon = 1e-18

// RigidModel maps points by a rotation followed by a translation. Two
// non-coincident matches constrain it.
type RigidModel struct {
	params geometry.AffineTransform
}

// Fit solves the weighted closed form: demean both clouds about their
// weighted centroids, recover the rotation angle from the weighted cross and
// dot sums, then the translation from the centroids.
func (r *RigidModel) Fit(matches []match.PointMatch) error {
	if len(matches) < r.MinMatches() {
		return fmt.Errorf("rigid: %w: have %d, need %d",
			ErrInsufficientData, len(matches), r.MinMatches())
	}
	if match.TotalWeight(matches) <= 0 {
		return fmt.Errorf("rigid: %w: total weight is zero", ErrIllConditioned)
	}

	srcC, tgtC := match.Centroids(matches)

	var dotSum, crossSum, spread float64
	for _, m := range matches {
		s := m.Source.Sub(srcC)
		d := m.Target.Sub(tgtC)
		dotSum += m.Weight * s.Dot(d)
		crossSum += m.Weight * s.Cross(d)
		spread += m.Weight * s.NormSquared()
	}
	if spread < spreadEpsilon {
		return fmt.Errorf("rigid: %w: coincident source points", ErrIllConditioned)
	}

	theta := math.Atan2(crossSum, dotSum)
	cos := math.Cos(theta)
	sin := math.Sin(theta)

	r.params = geometry.AffineTransform{
		A: cos, B: -sin, TX: tgtC.X - (cos*srcC.X - sin*srcC.Y),
		C: sin, D: cos, TY: tgtC.Y - (sin*srcC.X + cos*srcC.Y),
	}
	return nil
}

// Apply maps a point by the fitted rotation and translation.
func (r *RigidModel) Apply(p geometry.Point2D) geometry.Point2D {
	return r.params.Apply(p)
}

// ApplyInverse maps a point back. A fitted rigid transform is always
// bijective, so the error is always nil.
func (r *RigidModel) ApplyInverse(p geometry.Point2D) (geometry.Point2D, error) {
	inv, ok := r.params.Inverse()
	if !ok {
		return geometry.Point2D{}, fmt.Errorf("rigid: %w", ErrNonInvertible)
	}
	return inv.Apply(p), nil
}

// MinMatches returns 2.
func (r *RigidModel) MinMatches() int { return 2 }

// AsAffine returns the fitted parameters as an affine matrix.
func (r *RigidModel) AsAffine() geometry.AffineTransform { return r.params }
