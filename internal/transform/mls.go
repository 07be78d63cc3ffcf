package transform

import (
	"fmt"
	"math"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

const (
	defaultMLSBase  = Similarity
	defaultMLSAlpha = 1.0

	// mlsSnapDistance is the distance below which a query point is treated
	// as sitting on a control point and mapped to its target exactly.
	mlsSnapDistance = 1e-9
)

// MLSModel is a moving-least-squares local deformation. Instead of one global
// parameter set it keeps the control matches and, for each query point,
// solves a locally-weighted fit of a base model with weights
//
//	wᵢ / dist(q, srcᵢ)^(2α)
//
// so the mapping interpolates the control points exactly and relaxes to the
// base model far away from them. It has no closed-form inverse and is the
// one family member that is not Invertible.
type MLSModel struct {
	base     Kind
	alpha    float64
	controls []match.PointMatch
}

// NewMLS creates a moving-least-squares model over the given base kind.
// alpha controls the falloff of control point influence; values at or below
// zero fall back to the default.
func NewMLS(base Kind, alpha float64) *MLSModel {
	if base == MovingLeastSquares {
		base = defaultMLSBase
	}
	if alpha <= 0 {
		alpha = defaultMLSAlpha
	}
	return &MLSModel{base: base, alpha: alpha}
}

// Fit records a copy of the matches as control points after validating them
// against the base model's minimum.
func (m *MLSModel) Fit(matches []match.PointMatch) error {
	if len(matches) < m.MinMatches() {
		return fmt.Errorf("mls(%s): %w: have %d, need %d",
			m.base, ErrInsufficientData, len(matches), m.MinMatches())
	}
	if match.TotalWeight(matches) <= 0 {
		return fmt.Errorf("mls(%s): %w: total weight is zero", m.base, ErrIllConditioned)
	}

	// Probe one global fit so degenerate control geometry (e.g. all
	// collinear for an affine base) fails at Fit time, not silently at
	// every Apply.
	probe := m.base.New()
	if err := probe.Fit(matches); err != nil {
		return fmt.Errorf("mls(%s): %w", m.base, err)
	}

	m.controls = append([]match.PointMatch(nil), matches...)
	return nil
}

// Apply evaluates the locally-weighted base fit at the query point. When the
// local fit degenerates (all remote control points, for instance), it falls
// back to a plain translation fit, which is defined for any control set this
// model accepts.
func (m *MLSModel) Apply(p geometry.Point2D) geometry.Point2D {
	if len(m.controls) == 0 {
		return p
	}

	local := make([]match.PointMatch, len(m.controls))
	for i, c := range m.controls {
		d := p.Distance(c.Source)
		if d < mlsSnapDistance {
			return c.Target
		}
		local[i] = match.NewWeighted(c.Source, c.Target, c.Weight/math.Pow(d, 2*m.alpha))
	}

	model := m.base.New()
	if err := model.Fit(local); err != nil {
		fallback := &TranslationModel{}
		if err := fallback.Fit(local); err != nil {
			return p
		}
		return fallback.Apply(p)
	}
	return model.Apply(p)
}

// MinMatches returns the base model's minimum.
func (m *MLSModel) MinMatches() int { return m.base.MinMatches() }

// Base returns the base model kind.
func (m *MLSModel) Base() Kind { return m.base }

// Alpha returns the falloff exponent.
func (m *MLSModel) Alpha() float64 { return m.alpha }
