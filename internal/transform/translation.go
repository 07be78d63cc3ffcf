package transform

import (
	"fmt"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// TranslationModel maps points by a constant offset. One match constrains it.
type TranslationModel struct {
	tx, ty float64
}

// Fit sets the offset to the weighted mean displacement between targets and
// sources.
func (t *TranslationModel) Fit(matches []match.PointMatch) error {
	if len(matches) < t.MinMatches() {
		return fmt.Errorf("translation: %w: have %d, need %d",
			ErrInsufficientData, len(matches), t.MinMatches())
	}
	total := match.TotalWeight(matches)
	if total <= 0 {
		return fmt.Errorf("translation: %w: total weight %g", ErrIllConditioned, total)
	}

	var sx, sy float64
	for _, m := range matches {
		sx += m.Weight * (m.Target.X - m.Source.X)
		sy += m.Weight * (m.Target.Y - m.Source.Y)
	}
	t.tx = sx / total
	t.ty = sy / total
	return nil
}

// Apply maps a point by the fitted offset.
func (t *TranslationModel) Apply(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: p.X + t.tx, Y: p.Y + t.ty}
}

// ApplyInverse maps a point back by the fitted offset. A translation is
// always bijective, so the error is always nil.
func (t *TranslationModel) ApplyInverse(p geometry.Point2D) (geometry.Point2D, error) {
	return geometry.Point2D{X: p.X - t.tx, Y: p.Y - t.ty}, nil
}

// MinMatches returns 1.
func (t *TranslationModel) MinMatches() int { return 1 }

// AsAffine returns the offset as an affine matrix.
func (t *TranslationModel) AsAffine() geometry.AffineTransform {
	return geometry.Translation(t.tx, t.ty)
}
