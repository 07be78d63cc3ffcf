package warp

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice-align/internal/match"
	"slice-align/internal/transform"
	"slice-align/pkg/geometry"
)

// marker builds a small image with one red pixel on a gray background.
func marker(w, h, mx, my int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
		}
	}
	img.Set(mx, my, color.NRGBA{R: 255, A: 255})
	return img
}

func TestAffineTranslationMovesPixels(t *testing.T) {
	t.Parallel()

	src := marker(32, 32, 5, 7)
	out := Affine(src, geometry.Translation(10, 4), 32, 32)

	r, _, _, _ := out.At(15, 11).RGBA()
	assert.Greater(t, r, uint32(0x8000), "marker should land at (15,11)")

	r, _, _, _ = out.At(5, 7).RGBA()
	assert.Less(t, r, uint32(0x8000), "source position should no longer be red")
}

func TestInverse(t *testing.T) {
	t.Parallel()

	t.Run("undoes the forward warp", func(t *testing.T) {
		src := marker(32, 32, 5, 7)
		tf := geometry.Translation(10, 4)

		fwd := Affine(src, tf, 32, 32)
		back, ok := Inverse(fwd, tf, 32, 32)
		require.True(t, ok)

		r, _, _, _ := back.At(5, 7).RGBA()
		assert.Greater(t, r, uint32(0x8000))
	})

	t.Run("singular transform", func(t *testing.T) {
		_, ok := Inverse(marker(8, 8, 1, 1), geometry.AffineTransform{A: 1, B: 1, C: 1, D: 1}, 8, 8)
		assert.False(t, ok)
	})
}

func TestLocalMatchesAffineOnGlobalDeformation(t *testing.T) {
	t.Parallel()

	// When the MLS controls all follow one translation, Local must move the
	// marker the same way an affine warp does.
	shift := geometry.Translation(6, 3)
	controls := []match.PointMatch{
		match.New(geometry.NewPoint2D(0, 0), shift.Apply(geometry.NewPoint2D(0, 0))),
		match.New(geometry.NewPoint2D(31, 0), shift.Apply(geometry.NewPoint2D(31, 0))),
		match.New(geometry.NewPoint2D(0, 31), shift.Apply(geometry.NewPoint2D(0, 31))),
		match.New(geometry.NewPoint2D(31, 31), shift.Apply(geometry.NewPoint2D(31, 31))),
	}

	// Local resampling needs the reverse mapping.
	flipped := make([]match.PointMatch, len(controls))
	for i, c := range controls {
		flipped[i] = c.Flip()
	}
	model := transform.NewMLS(transform.Similarity, 1)
	require.NoError(t, model.Fit(flipped))

	src := marker(32, 32, 10, 10)
	out := Local(src, model, 32, 32)

	r, _, _, _ := out.At(16, 13).RGBA()
	assert.Greater(t, r, uint32(0x8000), "marker should land at (16,13)")
}
