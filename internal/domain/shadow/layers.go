package shadow

import (
	"iter"
	"math"
	"slices"
)

// Layer is one drop-shadow descriptor. Offsets, blur and spread are pixels.
type Layer struct {
	XOffset float64 `json:"xOffset"`
	YOffset float64 `json:"yOffset"`
	Blur    float64 `json:"blur"`
	Spread  float64 `json:"spread"`
	Alpha   float64 `json:"alpha"`
}

// Profile parameterizes one run of the layer generator.
//
// AngleDegrees is measured clockwise from the positive y axis (down the
// canvas), so 40 throws the shadow down and to the right. A negative Length
// flips the run to the opposite side.
type Profile struct {
	AngleDegrees      float64 `json:"angleDegrees"`
	Length            float64 `json:"length"`
	FinalBlur         float64 `json:"finalBlur"`
	Spread            float64 `json:"spread"`
	FinalTransparency float64 `json:"finalTransparency"`
}

// Layers lazily yields count layers for the profile, smallest first.
// A count below one yields nothing.
func Layers(count int, p Profile) iter.Seq[Layer] {
	return func(yield func(Layer) bool) {
		if count < 1 {
			return
		}
		sin, cos := math.Sincos(p.AngleDegrees * math.Pi / 180)
		for i := 1; i <= count; i++ {
			fraction := float64(i) / float64(count)
			offset := OffsetCurve.Ease(fraction)
			layer := Layer{
				// sin and cos are swapped on purpose, see Profile.
				XOffset: offset * sin * p.Length,
				YOffset: offset * cos * p.Length,
				Blur:    BlurCurve.Ease(fraction) * p.FinalBlur,
				Spread:  p.Spread,
				Alpha:   AlphaCurve.Ease(fraction) * p.FinalTransparency,
			}
			if !yield(layer) {
				return
			}
		}
	}
}

// GenerateLayers collects Layers into a slice.
func GenerateLayers(count int, p Profile) []Layer {
	return slices.Collect(Layers(count, p))
}
