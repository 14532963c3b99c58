package raster

import (
	"image"
	"math"

	"github.com/emersonart/printshop/internal/domain/shadow"
)

// transmittance accumulates how much of the backdrop survives the stacked
// black shadows. Every layer is black, so painting order does not matter and
// the layers reduce to one product per pixel.
type transmittance struct {
	w, h int
	t    []float32
}

func newTransmittance(w, h int) *transmittance {
	t := make([]float32, w*h)
	for i := range t {
		t[i] = 1
	}
	return &transmittance{w: w, h: h, t: t}
}

// addBoxShadow adds a CSS box-shadow of box. The blur radius maps to a
// gaussian with sigma = blur/2, which makes the coverage of an axis aligned
// rectangle separable into two erf profiles.
func (tr *transmittance) addBoxShadow(box image.Rectangle, layer shadow.Layer) {
	if layer.Alpha <= 0 {
		return
	}
	alpha := math.Min(layer.Alpha, 1)
	x0 := float64(box.Min.X) + layer.XOffset - layer.Spread
	x1 := float64(box.Max.X) + layer.XOffset + layer.Spread
	y0 := float64(box.Min.Y) + layer.YOffset - layer.Spread
	y1 := float64(box.Max.Y) + layer.YOffset + layer.Spread
	if x1 <= x0 || y1 <= y0 {
		return
	}
	sigma := math.Max(layer.Blur, 0) / 2
	reach := 3 * sigma

	cols := clampSpan(x0-reach, x1+reach, tr.w)
	rows := clampSpan(y0-reach, y1+reach, tr.h)
	if cols.lo >= cols.hi || rows.lo >= rows.hi {
		return
	}
	fx := coverage(cols, x0, x1, sigma)
	fy := coverage(rows, y0, y1, sigma)

	for j, cy := range fy {
		if cy == 0 {
			continue
		}
		row := tr.t[(rows.lo+j)*tr.w:]
		for i, cx := range fx {
			if cx == 0 {
				continue
			}
			row[cols.lo+i] *= float32(1 - alpha*cx*cy)
		}
	}
}

type span struct{ lo, hi int }

func clampSpan(lo, hi float64, n int) span {
	return span{
		lo: max(0, int(math.Floor(lo))),
		hi: min(n, int(math.Ceil(hi))),
	}
}

// coverage integrates the 1D gaussian over [a, b] at every pixel center of s.
func coverage(s span, a, b, sigma float64) []float64 {
	out := make([]float64, s.hi-s.lo)
	if sigma == 0 {
		for i := range out {
			c := float64(s.lo+i) + 0.5
			if c >= a && c < b {
				out[i] = 1
			}
		}
		return out
	}
	k := 1 / (sigma * math.Sqrt2)
	for i := range out {
		c := float64(s.lo+i) + 0.5
		out[i] = 0.5 * (math.Erf((b-c)*k) - math.Erf((a-c)*k))
	}
	return out
}

// apply darkens dst outside hole. CSS outer shadows are never drawn beneath
// their own box.
func (tr *transmittance) apply(dst *image.RGBA, hole image.Rectangle) {
	for y := 0; y < tr.h; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < tr.w; x++ {
			t := tr.t[y*tr.w+x]
			if t >= 1 || image.Pt(x, y).In(hole) {
				continue
			}
			i := x * 4
			// premultiplied black over: color scales by t, alpha fills toward opaque
			row[i] = uint8(float32(row[i])*t + 0.5)
			row[i+1] = uint8(float32(row[i+1])*t + 0.5)
			row[i+2] = uint8(float32(row[i+2])*t + 0.5)
			row[i+3] = uint8(255 - float32(255-row[i+3])*t + 0.5)
		}
	}
}
