package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// AffineModel maps points by a full 2x3 affine matrix. Three non-collinear
// matches constrain its six degrees of freedom.
type AffineModel struct {
	params geometry.AffineTransform
}

// Fit solves the weighted least-squares system
//
//	x' = a*x + b*y + tx
//	y' = c*x + d*y + ty
//
// stacked as a 2n x 6 matrix with each row pair scaled by sqrt(w), via QR
// factorization. QR keeps the condition number of the original system rather
// than squaring it the way explicit normal equations would. Near-singular
// systems (collinear or coincident points) are rejected with
// ErrIllConditioned instead of returning garbage parameters.
func (a *AffineModel) Fit(matches []match.PointMatch) error {
	n := len(matches)
	if n < a.MinMatches() {
		return fmt.Errorf("affine: %w: have %d, need %d",
			ErrInsufficientData, n, a.MinMatches())
	}
	if match.TotalWeight(matches) <= 0 {
		return fmt.Errorf("affine: %w: total weight is zero", ErrIllConditioned)
	}

	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i, m := range matches {
		w := math.Sqrt(m.Weight)
		x, y := m.Source.X, m.Source.Y

		A.Set(i*2, 0, w*x)
		A.Set(i*2, 1, w*y)
		A.Set(i*2, 2, w)
		B.SetVec(i*2, w*m.Target.X)

		A.Set(i*2+1, 3, w*x)
		A.Set(i*2+1, 4, w*y)
		A.Set(i*2+1, 5, w)
		B.SetVec(i*2+1, w*m.Target.Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return fmt.Errorf("affine: %w: %v", ErrIllConditioned, err)
	}
	for i := 0; i < 6; i++ {
		if v := params.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("affine: %w: non-finite solution", ErrIllConditioned)
		}
	}

	a.params = geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}
	return nil
}

// Apply maps a point by the fitted matrix.
func (a *AffineModel) Apply(p geometry.Point2D) geometry.Point2D {
	return a.params.Apply(p)
}

// ApplyInverse maps a point back, failing with ErrNonInvertible when the
// linear part is singular.
func (a *AffineModel) ApplyInverse(p geometry.Point2D) (geometry.Point2D, error) {
	inv, ok := a.params.Inverse()
	if !ok {
		return geometry.Point2D{}, fmt.Errorf("affine: %w: determinant %g",
			ErrNonInvertible, a.params.Det())
	}
	return inv.Apply(p), nil
}

// MinMatches returns 3.
func (a *AffineModel) MinMatches() int { return 3 }

// AsAffine returns the fitted parameters as an affine matrix.
func (a *AffineModel) AsAffine() geometry.AffineTransform { return a.params }

// SetAffine overwrites the parameters with a known matrix. It exists for
// callers reloading a persisted registration, not for fitting.
func (a *AffineModel) SetAffine(t geometry.AffineTransform) { a.params = t }
