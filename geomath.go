package geodesic

import "math"

const (
	// epsilon is the machine epsilon for float64, 2^-52.
	epsilon = 0x1p-52
	// minval is the smallest positive normal float64, 2^-1022.
	minval = 0x1p-1022
	// maxval is the largest finite float64.
	maxval = math.MaxFloat64
	// degree is the number of radians in one degree.
	degree = math.Pi / 180
)

func sq(x float64) float64 { return x * x }

// isfinite reports whether x is neither infinite nor NaN.
func isfinite(x float64) bool { return math.Abs(x) <= maxval }

// angNormalize places an angle in [-180, 180).  Assumes x is in [-540, 540).
func angNormalize(x float64) float64 {
	if x >= 180 {
		return x - 360
	}
	if x < -180 {
		return x + 360
	}
	return x
}

// angRound rounds x so that the smallest gap between results,
// 1/16 - nextafter(1/16, 0) = 1/2^57 for x in degrees, straddles zero
// (about 0.7 pm on the earth, roughly 1000 times finer than the resolution
// near 90 degrees).  This keeps tiny but non-zero values (e.g. 1.0e-200)
// away from the near singular cases.
func angRound(x float64) float64 {
	const z = 1.0 / 16
	y := math.Abs(x)
	// The compiler mustn't "simplify" z - (z - y) to y.
	if y < z {
		y = z - (z - y)
	}
	if x < 0 {
		return -y
	}
	return y
}

// sinCosNorm renormalizes sinx, cosx onto the unit circle.
func sinCosNorm(sinx, cosx float64) (float64, float64) {
	r := math.Hypot(sinx, cosx)
	return sinx / r, cosx / r
}

// sinCosSeries evaluates a trigonometric series by Clenshaw summation:
//
//	sinp:  sum(c[i] * sin(2*i*x),     i, 1, n)    with n = len(c)-1; c[0] unused
//	else:  sum(c[i] * cos((2*i+1)*x), i, 0, n-1)  with n = len(c)
//
// Approximate operation count is n+5 multiplies and 2*n+2 adds.
func sinCosSeries(sinp bool, sinx, cosx float64, c []float64) float64 {
	n := len(c)
	k := n // point to one beyond the last element
	if sinp {
		n--
	}
	ar := 2 * (cosx - sinx) * (cosx + sinx) // 2 * cos(2*x)
	var y0, y1 float64                      // accumulators for the sum
	if n&1 != 0 {
		k--
		y0 = c[k]
	}
	// Unroll the loop x 2, so the accumulators return to their original role.
	for n /= 2; n > 0; n-- {
		k--
		y1 = ar*y0 - y1 + c[k]
		k--
		y0 = ar*y1 - y0 + c[k]
	}
	if sinp {
		return 2 * sinx * cosx * y0 // sin(2*x) * y0
	}
	return cosx * (y0 - y1) // cos(x) * (y0 - y1)
}
