// Package warp resamples images under a fitted transform. It is the demo
// consumer of the fitting core: registration pipelines that need serious
// rendering bring their own.
package warp

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// Affine renders src under the forward transform t into a width x height
// canvas, resampling bilinearly. Pixels with no preimage stay transparent.
func Affine(src image.Image, t geometry.AffineTransform, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	m := f64.Aff3{t.A, t.B, t.TX, t.C, t.D, t.TY}
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}

// Inverse renders src under the inverse of t, for mapping a registered image
// back into its own space. The second return is false when t is singular.
func Inverse(src image.Image, t geometry.AffineTransform, width, height int) (*image.NRGBA, bool) {
	inv, ok := t.Inverse()
	if !ok {
		return nil, false
	}
	return Affine(src, inv, width, height), true
}

// Local renders src under a transform with no global matrix form, such as a
// moving-least-squares deformation. inverse must map destination coordinates
// back to source coordinates (fit the flipped matches to obtain it). Each
// destination pixel is sampled bilinearly from its preimage.
func Local(src image.Image, inverse match.Applier, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	bounds := src.Bounds()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := inverse.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
			r, g, b, a, ok := sampleBilinear(src, bounds, p.X, p.Y)
			if !ok {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = b
			dst.Pix[i+3] = a
		}
	}
	return dst
}

func sampleBilinear(src image.Image, bounds image.Rectangle, x, y float64) (r, g, b, a uint8, ok bool) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	if x0 < bounds.Min.X || y0 < bounds.Min.Y || x0+1 >= bounds.Max.X || y0+1 >= bounds.Max.Y {
		return 0, 0, 0, 0, false
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	blend := func(c00, c10, c01, c11 uint32) uint8 {
		top := float64(c00)*(1-fx) + float64(c10)*fx
		bot := float64(c01)*(1-fx) + float64(c11)*fx
		return uint8((top*(1-fy) + bot*fy) / 257)
	}

	r00, g00, b00, a00 := src.At(x0, y0).RGBA()
	r10, g10, b10, a10 := src.At(x0+1, y0).RGBA()
	r01, g01, b01, a01 := src.At(x0, y0+1).RGBA()
	r11, g11, b11, a11 := src.At(x0+1, y0+1).RGBA()

	return blend(r00, r10, r01, r11),
		blend(g00, g10, g01, g11),
		blend(b00, b10, b01, b11),
		blend(a00, a10, a01, a11),
		true
}
