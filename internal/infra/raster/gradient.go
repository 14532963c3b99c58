package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/emersonart/printshop/internal/domain/render"
)

type stop struct {
	pos float64
	c   color.NRGBA
}

// fillLinearGradient paints g across dst following CSS linear-gradient
// geometry: the gradient line passes through the center at the given angle
// and is long enough for the corners to land on the first and last stops.
func fillLinearGradient(dst *image.RGBA, g render.Gradient) error {
	stops := make([]stop, 0, len(g.Stops))
	for _, s := range g.Stops {
		c, err := render.ParseHexColor(s.Color)
		if err != nil {
			return err
		}
		stops = append(stops, stop{pos: s.Position / 100, c: c})
	}
	if len(stops) == 0 {
		return nil
	}

	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	sin, cos := math.Sincos(g.AngleDegrees * math.Pi / 180)
	dx, dy := sin, -cos
	length := math.Abs(w*sin) + math.Abs(h*cos)
	if length == 0 {
		length = 1
	}
	cx, cy := w/2, h/2

	for y := 0; y < b.Dy(); y++ {
		py := float64(y) + 0.5 - cy
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			px := float64(x) + 0.5 - cx
			t := (px*dx+py*dy)/length + 0.5
			c := sample(stops, t)
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, 0xff
		}
	}
	return nil
}

func sample(stops []stop, t float64) color.NRGBA {
	if t <= stops[0].pos {
		return stops[0].c
	}
	last := stops[len(stops)-1]
	if t >= last.pos {
		return last.c
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.pos {
			continue
		}
		span := b.pos - a.pos
		if span <= 0 {
			return b.c
		}
		f := (t - a.pos) / span
		return color.NRGBA{
			R: lerp(a.c.R, b.c.R, f),
			G: lerp(a.c.G, b.c.G, f),
			B: lerp(a.c.B, b.c.B, f),
			A: 0xff,
		}
	}
	return last.c
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
