package shadow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArtworkShadowOrder(t *testing.T) {
	const n = 7
	layers := ArtworkShadow(n, DefaultIntensity)
	require.Len(t, layers, 3*n)

	long, short, upper := ArtworkProfiles(DefaultIntensity)
	require.Equal(t, GenerateLayers(n, long), layers[:n])
	require.Equal(t, GenerateLayers(n, short), layers[n:2*n])
	require.Equal(t, GenerateLayers(n, upper), layers[2*n:])
}

func TestArtworkProfilesDefaultIntensity(t *testing.T) {
	long, short, upper := ArtworkProfiles(0.4)

	require.Equal(t, 40.0, long.AngleDegrees)
	require.InDelta(t, 100, long.Length, 1e-9)
	require.InDelta(t, 78, long.FinalBlur, 1e-9)
	require.InDelta(t, 0.08, long.FinalTransparency, 1e-12)

	require.Equal(t, 35.0, short.AngleDegrees)
	require.InDelta(t, 72, short.Length, 1e-9)
	require.InDelta(t, 24, short.FinalBlur, 1e-9)
	require.InDelta(t, 0.072, short.FinalTransparency, 1e-12)

	require.Equal(t, -62.0, upper.AngleDegrees)
	require.InDelta(t, -64, upper.Length, 1e-9)
	require.InDelta(t, 66, upper.FinalBlur, 1e-9)
	require.InDelta(t, 0.064, upper.FinalTransparency, 1e-12)

	for _, p := range []Profile{long, short, upper} {
		require.Zero(t, p.Spread)
	}
}

func TestArtworkShadowClampsIntensity(t *testing.T) {
	require.Equal(t, ArtworkShadow(5, 0), ArtworkShadow(5, -5))
	require.Equal(t, ArtworkShadow(5, 1), ArtworkShadow(5, 5))
}

func TestArtworkShadowIsPure(t *testing.T) {
	require.Equal(t, ArtworkShadow(7, 0.63), ArtworkShadow(7, 0.63))
}

func TestArtworkShadowZeroIntensityIsInvisible(t *testing.T) {
	for _, l := range ArtworkShadow(4, 0) {
		require.Zero(t, l.Alpha)
		require.Zero(t, l.XOffset)
		require.Zero(t, l.YOffset)
	}
}

func TestArtworkShadowNoLayers(t *testing.T) {
	require.Empty(t, ArtworkShadow(0, 0.4))
}
