package shadow

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayerCSS(t *testing.T) {
	l := Layer{XOffset: 1.5, YOffset: -2, Blur: 3.25, Spread: 0, Alpha: 0.08}
	require.Equal(t, "1.5px -2px 3.25px 0px rgba(0, 0, 0, 0.08)", l.CSS())
}

func TestLayerCSSNegativeZero(t *testing.T) {
	l := Layer{XOffset: math.Copysign(0, -1)}
	require.Equal(t, "0px 0px 0px 0px rgba(0, 0, 0, 0)", l.CSS())
}

func TestCSSJoinsInOrder(t *testing.T) {
	layers := ArtworkShadow(7, DefaultIntensity)
	value := CSS(layers)
	parts := strings.Split(value, ",\n")
	require.Len(t, parts, len(layers))
	for i, part := range parts {
		require.Equal(t, layers[i].CSS(), part)
	}
	require.Empty(t, CSS(nil))
}
