// Package match provides the point-correspondence value type consumed by the
// transform fitters and the robust estimator.
package match

import (
	"slice-align/pkg/geometry"
)

// Applier is the minimal capability a fitted transform needs to expose for a
// correspondence to measure itself against it.
type Applier interface {
	Apply(p geometry.Point2D) geometry.Point2D
}

// PointMatch is an immutable matched pair of coordinates with a weight.
// Source lives in the image being registered, Target in the reference image.
type PointMatch struct {
	Source geometry.Point2D `json:"source"`
	Target geometry.Point2D `json:"target"`
	Weight float64          `json:"weight"`
}

// New creates a PointMatch with the default weight of 1.
func New(source, target geometry.Point2D) PointMatch {
	return PointMatch{Source: source, Target: target, Weight: 1}
}

// NewWeighted creates a PointMatch with an explicit weight.
func NewWeighted(source, target geometry.Point2D, weight float64) PointMatch {
	return PointMatch{Source: source, Target: target, Weight: weight}
}

// Residual returns the Euclidean distance between the transformed source
// point and the target point.
func (m PointMatch) Residual(t Applier) float64 {
	return t.Apply(m.Source).Distance(m.Target)
}

// Flip returns the match with source and target exchanged. Fitting flipped
// matches estimates the reverse mapping.
func (m PointMatch) Flip() PointMatch {
	return PointMatch{Source: m.Target, Target: m.Source, Weight: m.Weight}
}

// TotalWeight returns the sum of weights over the matches.
func TotalWeight(matches []PointMatch) float64 {
	var sum float64
	for _, m := range matches {
		sum += m.Weight
	}
	return sum
}

// Centroids returns the weighted centroids of the source and target point
// clouds. The second return is the zero point when the total weight is zero.
func Centroids(matches []PointMatch) (source, target geometry.Point2D) {
	total := TotalWeight(matches)
	if total == 0 {
		return geometry.Point2D{}, geometry.Point2D{}
	}
	for _, m := range matches {
		source = source.Add(m.Source.Scale(m.Weight))
		target = target.Add(m.Target.Scale(m.Weight))
	}
	return source.Scale(1 / total), target.Scale(1 / total)
}

// Select returns the matches at the given indices, in index order.
func Select(matches []PointMatch, indices []int) []PointMatch {
	out := make([]PointMatch, len(indices))
	for i, idx := range indices {
		out[i] = matches[idx]
	}
	return out
}
