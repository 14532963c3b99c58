package shadow

import "math"

const (
	// DefaultLayerCount is the number of layers per run used for previews.
	DefaultLayerCount = 7
	// DefaultIntensity is the shadow strength used when callers do not override it.
	DefaultIntensity = 0.4
)

// ArtworkProfiles derives the long, short and upper profiles for an intensity.
// Intensity is clamped to [0,1]; NaN is treated as zero.
func ArtworkProfiles(intensity float64) (long, short, upper Profile) {
	factor := clampUnit(intensity) * 2
	long = Profile{
		AngleDegrees:      40,
		Length:            125 * factor,
		FinalBlur:         65 * (2 - factor),
		FinalTransparency: 0.1 * factor,
	}
	short = Profile{
		AngleDegrees:      35,
		Length:            90 * factor,
		FinalBlur:         20 * (2 - factor),
		FinalTransparency: 0.09 * factor,
	}
	upper = Profile{
		AngleDegrees:      -62,
		Length:            -80 * factor,
		FinalBlur:         55 * (2 - factor),
		FinalTransparency: 0.08 * factor,
	}
	return long, short, upper
}

// ArtworkShadow returns the full stack for an artwork in paint order: the long
// run first, then the short run, then the upper accent.
func ArtworkShadow(layerCount int, intensity float64) []Layer {
	if layerCount < 1 {
		return nil
	}
	long, short, upper := ArtworkProfiles(intensity)
	out := make([]Layer, 0, 3*layerCount)
	for _, p := range []Profile{long, short, upper} {
		for layer := range Layers(layerCount, p) {
			out = append(out, layer)
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
