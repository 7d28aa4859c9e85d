package geodesic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeriesAtZeroEps(t *testing.T) {
	// On a sphere every expansion collapses.
	require.Equal(t, 0.0, a1m1f(0))
	require.Equal(t, 0.0, a2m1f(0))
	require.Equal(t, [nC1 + 1]float64{}, c1f(0))
	require.Equal(t, [nC1p + 1]float64{}, c1pf(0))
	require.Equal(t, [nC2 + 1]float64{}, c2f(0))

	sphere, err := NewEllipsoid(1, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, sphere.a3f(0))
	require.Equal(t, [nC3]float64{}, sphere.c3f(0))
	c4 := sphere.c4f(0)
	require.InDelta(t, 2.0/3.0, c4[0], 1e-15)
	for _, v := range c4[1:] {
		require.Equal(t, 0.0, v)
	}
}

func TestSeriesLeadingOrder(t *testing.T) {
	// For small eps the leading coefficients match their first order
	// expansions: A1-1 ~ eps, C1[1] ~ -eps/2, C1'[1] ~ eps/2,
	// A2-1 ~ -eps, C2[1] ~ eps/2.
	const eps = 1e-8
	require.InDelta(t, eps, a1m1f(eps), 1e-15)
	require.InDelta(t, -eps, a2m1f(eps), 1e-15)
	c1 := c1f(eps)
	require.InDelta(t, -eps/2, c1[1], 1e-23)
	c1p := c1pf(eps)
	require.InDelta(t, eps/2, c1p[1], 1e-23)
	c2 := c2f(eps)
	require.InDelta(t, eps/2, c2[1], 1e-23)
}

// The C1' series reverts the C1 series: applying the distance series and
// then the arc series must return the starting angle, up to the order of
// the expansions.
func TestDistanceSeriesReversion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, eps := range []float64{0.001, 0.01, 0.05} {
		c1 := c1f(eps)
		c1p := c1pf(eps)
		tol := 10*math.Pow(eps, 7) + 1e-14
		for i := 0; i < 200; i++ {
			sig := (rng.Float64()*2 - 1) * math.Pi
			ssig, csig := math.Sin(sig), math.Cos(sig)
			tau := sig + sinCosSeries(true, ssig, csig, c1[:])
			stau, ctau := math.Sin(tau), math.Cos(tau)
			back := tau + sinCosSeries(true, stau, ctau, c1p[:])
			require.InDelta(t, sig, back, tol)
		}
	}
}
