package diag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

type identity struct{}

func (identity) Apply(p geometry.Point2D) geometry.Point2D { return p }

func TestResidualsAndSummary(t *testing.T) {
	t.Parallel()

	// Residuals under identity are just source->target distances: 3, 4, 0.
	matches := []match.PointMatch{
		match.New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(3, 0)),
		match.New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(0, 4)),
		match.New(geometry.NewPoint2D(5, 5), geometry.NewPoint2D(5, 5)),
	}

	res := Residuals(matches, identity{})
	assert.Equal(t, []float64{3, 4, 0}, res)

	s := Summarize(matches, identity{})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 7.0/3.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.8867513, s.RMS, 1e-6) // sqrt(25/3)
	assert.InDelta(t, 4.0, s.Max, 1e-12)
	assert.GreaterOrEqual(t, s.P95, 3.0)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Summary{}, Summarize(nil, identity{}))
}

func TestSaveResidualPlot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "residuals.png")
	res := []float64{0.1, 0.4, 3.2, 0.2, 0.9, 5.5, 0.3}

	require.NoError(t, SaveResidualPlot(path, res, 2.0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveResidualPlotEmpty(t *testing.T) {
	t.Parallel()

	err := SaveResidualPlot(filepath.Join(t.TempDir(), "r.png"), nil, 1.0)
	assert.Error(t, err)
}
