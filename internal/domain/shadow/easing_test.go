package shadow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurveBoundaries(t *testing.T) {
	for _, c := range []Curve{AlphaCurve, OffsetCurve, BlurCurve, {X1: 0.25, Y1: 0.1, X2: 0.25, Y2: 1}} {
		require.Equal(t, 0.0, c.Ease(0))
		require.Equal(t, 1.0, c.Ease(1))
		require.Equal(t, 0.0, c.Ease(-0.5))
		require.Equal(t, 1.0, c.Ease(1.5))
	}
}

func TestCurveLinear(t *testing.T) {
	linear := Curve{X1: 0.3, Y1: 0.3, X2: 0.6, Y2: 0.6}
	for _, x := range []float64{0.1, 0.33, 0.5, 0.9} {
		require.Equal(t, x, linear.Ease(x))
	}
}

func TestCurveMatchesParametricPoint(t *testing.T) {
	curves := []Curve{AlphaCurve, OffsetCurve, {X1: 0.42, Y1: 0, X2: 0.58, Y2: 1}, {X1: 0.25, Y1: 0.1, X2: 0.25, Y2: 1}}
	for _, c := range curves {
		for i := 1; i < 100; i++ {
			u := float64(i) / 100
			x := sampleCurve(c.X1, c.X2, u)
			y := sampleCurve(c.Y1, c.Y2, u)
			require.InDelta(t, y, c.Ease(x), 1e-4, "curve %+v at u=%v", c, u)
		}
	}
}

func TestCurveMonotonic(t *testing.T) {
	for _, c := range []Curve{AlphaCurve, OffsetCurve} {
		prev := 0.0
		for i := 1; i <= 1000; i++ {
			v := c.Ease(float64(i) / 1000)
			require.GreaterOrEqual(t, v, prev-1e-12)
			prev = v
		}
	}
}

func TestCurveValid(t *testing.T) {
	require.True(t, AlphaCurve.Valid())
	require.False(t, Curve{X1: -0.1, Y1: 0, X2: 0.5, Y2: 1}.Valid())
	require.False(t, Curve{X1: 0.1, Y1: 0, X2: 1.5, Y2: 1}.Valid())
}
