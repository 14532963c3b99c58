package shadow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateLayersCountAndFinalLayer(t *testing.T) {
	profile := Profile{AngleDegrees: 40, Length: 100, FinalBlur: 78, Spread: 2, FinalTransparency: 0.08}
	for _, count := range []int{1, 2, 7, 16} {
		layers := GenerateLayers(count, profile)
		require.Len(t, layers, count)

		last := layers[count-1]
		require.Equal(t, profile.FinalTransparency, last.Alpha)
		require.Equal(t, profile.FinalBlur, last.Blur)
		require.InDelta(t, math.Sin(40*math.Pi/180)*100, last.XOffset, 1e-9)
		require.InDelta(t, math.Cos(40*math.Pi/180)*100, last.YOffset, 1e-9)
		for _, l := range layers {
			require.Equal(t, 2.0, l.Spread)
		}
	}
}

func TestGenerateLayersGrowOutward(t *testing.T) {
	layers := GenerateLayers(7, Profile{AngleDegrees: 35, Length: 72, FinalBlur: 24, FinalTransparency: 0.072})
	for i := 1; i < len(layers); i++ {
		require.Greater(t, layers[i].Blur, layers[i-1].Blur)
		require.Greater(t, layers[i].YOffset, layers[i-1].YOffset)
		require.Greater(t, layers[i].Alpha, layers[i-1].Alpha)
	}
}

func TestGenerateLayersAngleConvention(t *testing.T) {
	down := GenerateLayers(1, Profile{AngleDegrees: 0, Length: 10})
	require.InDelta(t, 0, down[0].XOffset, 1e-12)
	require.InDelta(t, 10, down[0].YOffset, 1e-12)

	right := GenerateLayers(1, Profile{AngleDegrees: 90, Length: 10})
	require.InDelta(t, 10, right[0].XOffset, 1e-12)
	require.InDelta(t, 0, right[0].YOffset, 1e-12)
}

func TestGenerateLayersEmpty(t *testing.T) {
	require.Empty(t, GenerateLayers(0, Profile{Length: 10}))
	require.Empty(t, GenerateLayers(-3, Profile{Length: 10}))
}

func TestLayersStopsEarly(t *testing.T) {
	seen := 0
	for range Layers(10, Profile{Length: 1}) {
		seen++
		if seen == 3 {
			break
		}
	}
	require.Equal(t, 3, seen)
}
