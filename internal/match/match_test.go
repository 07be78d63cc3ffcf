package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice-align/pkg/geometry"
)

type offset struct{ dx, dy float64 }

func (o offset) Apply(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: p.X + o.dx, Y: p.Y + o.dy}
}

func TestNewDefaultsWeight(t *testing.T) {
	t.Parallel()

	m := New(geometry.NewPoint2D(1, 2), geometry.NewPoint2D(3, 4))
	assert.Equal(t, 1.0, m.Weight)

	w := NewWeighted(geometry.NewPoint2D(1, 2), geometry.NewPoint2D(3, 4), 0.25)
	assert.Equal(t, 0.25, w.Weight)
}

func TestResidual(t *testing.T) {
	t.Parallel()

	m := New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(3, 4))
	assert.InDelta(t, 5.0, m.Residual(offset{}), 1e-12)
	assert.InDelta(t, 0.0, m.Residual(offset{dx: 3, dy: 4}), 1e-12)
}

func TestFlip(t *testing.T) {
	t.Parallel()

	m := NewWeighted(geometry.NewPoint2D(1, 2), geometry.NewPoint2D(3, 4), 0.5)
	f := m.Flip()
	assert.Equal(t, m.Source, f.Target)
	assert.Equal(t, m.Target, f.Source)
	assert.Equal(t, m.Weight, f.Weight)
}

func TestCentroids(t *testing.T) {
	t.Parallel()

	t.Run("unweighted", func(t *testing.T) {
		matches := []PointMatch{
			New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 10)),
			New(geometry.NewPoint2D(2, 4), geometry.NewPoint2D(12, 14)),
		}
		src, tgt := Centroids(matches)
		assert.Equal(t, geometry.NewPoint2D(1, 2), src)
		assert.Equal(t, geometry.NewPoint2D(11, 12), tgt)
	})

	t.Run("weighted", func(t *testing.T) {
		matches := []PointMatch{
			NewWeighted(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(0, 0), 3),
			NewWeighted(geometry.NewPoint2D(4, 0), geometry.NewPoint2D(8, 0), 1),
		}
		src, tgt := Centroids(matches)
		assert.InDelta(t, 1.0, src.X, 1e-12)
		assert.InDelta(t, 2.0, tgt.X, 1e-12)
	})

	t.Run("zero weight", func(t *testing.T) {
		matches := []PointMatch{
			NewWeighted(geometry.NewPoint2D(5, 5), geometry.NewPoint2D(6, 6), 0),
		}
		src, tgt := Centroids(matches)
		assert.Equal(t, geometry.Point2D{}, src)
		assert.Equal(t, geometry.Point2D{}, tgt)
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()

	matches := []PointMatch{
		New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(0, 0)),
		New(geometry.NewPoint2D(1, 1), geometry.NewPoint2D(1, 1)),
		New(geometry.NewPoint2D(2, 2), geometry.NewPoint2D(2, 2)),
	}
	sub := Select(matches, []int{2, 0})
	require.Len(t, sub, 2)
	assert.Equal(t, matches[2], sub[0])
	assert.Equal(t, matches[0], sub[1])
}

func TestTotalWeight(t *testing.T) {
	t.Parallel()

	matches := []PointMatch{
		NewWeighted(geometry.Point2D{}, geometry.Point2D{}, 1.5),
		NewWeighted(geometry.Point2D{}, geometry.Point2D{}, 2.5),
	}
	assert.Equal(t, 4.0, TotalWeight(matches))
	assert.Equal(t, 0.0, TotalWeight(nil))
}
