// Package diag reports registration quality: residual statistics for a
// fitted transform and a residual plot for eyeballing threshold choices.
package diag

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"slice-align/internal/match"
)

// Summary describes the residual distribution of a match set under a fitted
// transform.
type Summary struct {
	Count  int
	Mean   float64
	RMS    float64
	StdDev float64
	Max    float64
	P95    float64
}

// Residuals returns the per-match residuals under the transform, in input
// order.
func Residuals(matches []match.PointMatch, t match.Applier) []float64 {
	res := make([]float64, len(matches))
	for i, m := range matches {
		res[i] = m.Residual(t)
	}
	return res
}

// Summarize computes residual statistics for the matches under the transform.
func Summarize(matches []match.PointMatch, t match.Applier) Summary {
	res := Residuals(matches, t)
	if len(res) == 0 {
		return Summary{}
	}

	var sumSq, max float64
	for _, r := range res {
		sumSq += r * r
		if r > max {
			max = r
		}
	}

	sorted := append([]float64(nil), res...)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(res),
		Mean:  stat.Mean(res, nil),
		Max:   max,
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	s.RMS = math.Sqrt(sumSq / float64(len(res)))
	if len(res) > 1 {
		s.StdDev = stat.StdDev(res, nil)
	}
	return s
}

// SaveResidualPlot writes a scatter of per-match residuals with the inlier
// threshold drawn as a horizontal line. The file format follows the
// extension (png, svg, pdf).
func SaveResidualPlot(path string, residuals []float64, threshold float64) error {
	if len(residuals) == 0 {
		return fmt.Errorf("residual plot: no residuals")
	}

	p := plot.New()
	p.Title.Text = "Registration residuals"
	p.X.Label.Text = "match index"
	p.Y.Label.Text = "residual"

	pts := make(plotter.XYs, len(residuals))
	for i, r := range residuals {
		pts[i].X = float64(i)
		pts[i].Y = r
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("residual plot: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	tau, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: threshold},
		{X: float64(len(residuals) - 1), Y: threshold},
	})
	if err != nil {
		return fmt.Errorf("residual plot: %w", err)
	}
	tau.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(scatter, tau)
	p.Legend.Add("threshold", tau)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("residual plot: %w", err)
	}
	return nil
}
