package shadow

import "math"

// Curve holds the two free control points of a CSS cubic-bezier() timing
// function. The curve is anchored at (0,0) and (1,1).
type Curve struct {
	X1, Y1, X2, Y2 float64
}

// Fixed curves used by the layer generator. Offset and blur share one curve.
var (
	AlphaCurve  = Curve{X1: 0.1, Y1: 0.5, X2: 0.9, Y2: 0.5}
	OffsetCurve = Curve{X1: 0.7, Y1: 0.1, X2: 0.9, Y2: 0.3}
	BlurCurve   = Curve{X1: 0.7, Y1: 0.1, X2: 0.9, Y2: 0.3}
)

const (
	newtonIterations = 8
	newtonMinSlope   = 1e-6
	bisectIterations = 48
	solveEpsilon     = 1e-9
)

// Valid reports whether the x control points keep the curve a function of x.
func (c Curve) Valid() bool {
	return c.X1 >= 0 && c.X1 <= 1 && c.X2 >= 0 && c.X2 <= 1
}

// Ease maps progress t in [0,1] to the eased value. t is read as the x
// coordinate of the curve and the matching y is returned. Inputs outside the
// unit interval are clamped, so Ease(0) == 0 and Ease(1) == 1 exactly.
func (c Curve) Ease(t float64) float64 {
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if c.X1 == c.Y1 && c.X2 == c.Y2 {
		return t
	}
	return sampleCurve(c.Y1, c.Y2, c.solveX(t))
}

// solveX finds the curve parameter whose x coordinate equals x.
func (c Curve) solveX(x float64) float64 {
	u := x
	for range newtonIterations {
		delta := sampleCurve(c.X1, c.X2, u) - x
		if math.Abs(delta) < solveEpsilon {
			return u
		}
		slope := sampleCurveDerivative(c.X1, c.X2, u)
		if math.Abs(slope) < newtonMinSlope {
			break
		}
		u -= delta / slope
		if u < 0 || u > 1 {
			break
		}
	}

	// Bisection always converges because x(u) is monotonic on [0,1].
	lo, hi := 0.0, 1.0
	u = x
	for range bisectIterations {
		delta := sampleCurve(c.X1, c.X2, u) - x
		if math.Abs(delta) < solveEpsilon {
			return u
		}
		if delta > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return u
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}
