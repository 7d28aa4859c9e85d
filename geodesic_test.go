package geodesic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEllipsoid(t *testing.T) {
	e, err := NewEllipsoid(WGS84A, WGS84F)
	require.NoError(t, err)
	require.Equal(t, WGS84A, e.Radius())
	require.Equal(t, WGS84F, e.Flattening())

	// A reciprocal flattening is accepted.
	e2, err := NewEllipsoid(WGS84A, 298.257223563)
	require.NoError(t, err)
	require.Equal(t, e.Flattening(), e2.Flattening())

	// Spheres and prolate ellipsoids are fine.
	_, err = NewEllipsoid(6.4e6, 0)
	require.NoError(t, err)
	_, err = NewEllipsoid(6.4e6, -0.5)
	require.NoError(t, err)

	for _, bad := range []struct{ a, f float64 }{
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{6.4e6, 1}, // b = 0
		{6.4e6, math.NaN()},
	} {
		_, err := NewEllipsoid(bad.a, bad.f)
		require.Error(t, err, "a=%v f=%v", bad.a, bad.f)
	}
}

func TestWGS84(t *testing.T) {
	e := WGS84()
	require.Equal(t, 6378137.0, e.Radius())
	require.Equal(t, WGS84F, e.Flattening())
	require.InEpsilon(t, 5.1006562172e14, e.EllipsoidArea(), 1e-7)
}

func TestInverseKnown(t *testing.T) {
	e := WGS84()

	// JFK to Paris CDG.
	r, err := e.Inverse(40.6, -73.8, 49.01666667, 2.55, Standard)
	require.NoError(t, err)
	require.InDelta(t, 53.47022, r.Azi1, 1e-4)
	require.InDelta(t, 111.59996, r.Azi2, 1e-4)
	require.InDelta(t, 5853226, r.Distance, 1.0)

	// Equator to pole along a meridian is the quarter meridian.
	r, err = e.Inverse(0, 0, 90, 0, Distance|Azimuth)
	require.NoError(t, err)
	require.InDelta(t, 10001965.729, r.Distance, 0.01)
	require.InDelta(t, 0, r.Azi1, 1e-9)
	require.InDelta(t, 90, r.ArcLength, 1e-9)

	// Pole to pole.
	r, err = e.Inverse(90, 0, -90, 0, Distance)
	require.NoError(t, err)
	require.InDelta(t, 2*10001965.729, r.Distance, 0.05)

	// A very short line, from Karney (2013), table 3.
	r, err = e.Inverse(-30.12345, 0, -30.12344, 0.00005, Standard)
	require.NoError(t, err)
	require.InDelta(t, 4.944208, r.Distance, 1e-3)
	require.InDelta(t, 77.043533, r.Azi1, 1e-3)
}

func TestDirectKnown(t *testing.T) {
	e := WGS84()

	// The direct problem of Karney (2013), table 2.
	r, err := e.Direct(40, 0, 30, 10e6, Standard)
	require.NoError(t, err)
	require.InDelta(t, 41.79331020506, r.Lat2, 1e-6)
	require.InDelta(t, 137.84490004377, r.Lon2, 1e-6)
	require.InDelta(t, 149.09016107, r.Azi2, 1e-6)
	require.InDelta(t, 90.0, r.ArcLength, 0.4)

	// Zero distance stays put.
	r, err = e.Direct(40, 3, 30, 0, Standard)
	require.NoError(t, err)
	require.InDelta(t, 40, r.Lat2, 1e-12)
	require.InDelta(t, 3, r.Lon2, 1e-12)
	require.Equal(t, 0.0, r.Distance)
}

func TestInverseEquatorial(t *testing.T) {
	e := WGS84()
	f1 := 1 - e.Flattening()
	b := WGS84A * f1

	r, err := e.Inverse(0, 0, 0, 90, All)
	require.NoError(t, err)
	require.InDelta(t, WGS84A*math.Pi/2, r.Distance, 1e-6)
	require.Equal(t, 90.0, r.Azi1)
	require.Equal(t, 90.0, r.Azi2)
	// Along the equator sigma = lambda / (1-f).
	require.InDelta(t, 90/f1, r.ArcLength, 1e-9)
	sig := (math.Pi / 2) / f1
	require.InDelta(t, b*math.Sin(sig), r.ReducedLength, 1e-6)
	require.InDelta(t, math.Cos(sig), r.M12, 1e-12)
	require.InDelta(t, math.Cos(sig), r.M21, 1e-12)
	// The geodesic runs along the equator, enclosing no area.
	require.Equal(t, 0.0, r.Area)

	// Still equatorial at 179 degrees...
	r, err = e.Inverse(0, 0, 0, 179, Distance|Azimuth)
	require.NoError(t, err)
	require.InDelta(t, WGS84A*179*degree, r.Distance, 1e-6)
	require.Equal(t, 90.0, r.Azi1)

	// ...but beyond lambda = pi (1 - f) the shortest path leaves the
	// equator.
	r, err = e.Inverse(0, 0, 0, 179.6, Distance|Azimuth)
	require.NoError(t, err)
	require.False(t, math.IsNaN(r.Distance))
	require.Less(t, r.Distance, WGS84A*179.6*degree)
	require.Greater(t, r.Distance, 19.9e6)
	require.NotEqual(t, 90.0, r.Azi1)
}

func TestInverseMeridian(t *testing.T) {
	e := WGS84()

	// Arcs along a meridian add up.
	south, err := e.Inverse(-30, 7, 0, 7, Distance)
	require.NoError(t, err)
	north, err := e.Inverse(0, 7, 40, 7, Distance)
	require.NoError(t, err)
	whole, err := e.Inverse(-30, 7, 40, 7, Distance|Azimuth)
	require.NoError(t, err)
	require.InDelta(t, south.Distance+north.Distance, whole.Distance, 1e-6)
	require.InDelta(t, 0, whole.Azi1, 1e-9)
	require.InDelta(t, 0, whole.Azi2, 1e-9)
}

func TestInverseCoincident(t *testing.T) {
	e := WGS84()
	r, err := e.Inverse(30, 10, 30, 10, All)
	require.NoError(t, err)
	require.Equal(t, 0.0, r.Distance)
	require.Equal(t, 0.0, r.ArcLength)
	require.Equal(t, 0.0, r.ReducedLength)
	require.Equal(t, 1.0, r.M12)
	require.Equal(t, 1.0, r.M21)
	require.Equal(t, 0.0, r.Area)
	require.Equal(t, r.Azi1, r.Azi2)
}

func TestInverseSymmetry(t *testing.T) {
	e := WGS84()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		lat1 := rng.Float64()*180 - 90
		lon1 := rng.Float64()*360 - 180
		lat2 := rng.Float64()*180 - 90
		lon2 := rng.Float64()*360 - 180

		r12, err := e.Inverse(lat1, lon1, lat2, lon2, All)
		require.NoError(t, err)
		r21, err := e.Inverse(lat2, lon2, lat1, lon1, All)
		require.NoError(t, err)

		require.InDelta(t, r12.Distance, r21.Distance, 1e-6)
		require.InDelta(t, r12.ArcLength, r21.ArcLength, 1e-9)
		// Reversing the points reverses the azimuths.
		require.InDelta(t, 0, math.Remainder(r21.Azi1-(r12.Azi2+180), 360), 1e-6)
		require.InDelta(t, 0, math.Remainder(r21.Azi2-(r12.Azi1+180), 360), 1e-6)
		// m21 = -m12, M12 and M21 trade places, the area changes sign.
		require.InDelta(t, -r12.ReducedLength, r21.ReducedLength, 1e-5)
		require.InDelta(t, r12.M21, r21.M12, 1e-10)
		require.InDelta(t, r12.M12, r21.M21, 1e-10)
		require.InDelta(t, -r12.Area, r21.Area, math.Max(1e-6*math.Abs(r12.Area), 1.0))
	}
}

func TestDirectInverseRoundTrip(t *testing.T) {
	e := WGS84()
	rng := rand.New(rand.NewSource(23))
	for i := 0; i < 1000; i++ {
		lat1 := rng.Float64()*180 - 90
		lon1 := rng.Float64()*360 - 180
		azi1 := rng.Float64()*360 - 180
		s12 := rng.Float64() * 19e6

		d, err := e.Direct(lat1, lon1, azi1, s12, Standard)
		require.NoError(t, err)
		r, err := e.Inverse(lat1, lon1, d.Lat2, d.Lon2, Azimuth|Distance)
		require.NoError(t, err)

		require.InDelta(t, s12, r.Distance, 1e-6)
		require.InDelta(t, 0, math.Remainder(r.Azi1-d.Azi1, 360), 1e-6)
		require.InDelta(t, 0, math.Remainder(r.Azi2-d.Azi2, 360), 1e-6)
	}
}

func TestDirectNegativeDistance(t *testing.T) {
	e := WGS84()
	// A negative distance runs the geodesic backwards.
	fwd, err := e.Direct(40, 3, 30, 1e6, Standard)
	require.NoError(t, err)
	back, err := e.Direct(fwd.Lat2, fwd.Lon2, fwd.Azi2, -1e6, Standard)
	require.NoError(t, err)
	require.InDelta(t, 40, back.Lat2, 1e-9)
	require.InDelta(t, 3, back.Lon2, 1e-9)
}

func TestArcDirect(t *testing.T) {
	e := WGS84()
	d, err := e.Direct(35, -20, 60, 5e6, Standard)
	require.NoError(t, err)
	ad, err := e.ArcDirect(35, -20, 60, d.ArcLength, Standard|Distance)
	require.NoError(t, err)
	require.Equal(t, d.ArcLength, ad.ArcLength)
	require.InDelta(t, d.Lat2, ad.Lat2, 1e-9)
	require.InDelta(t, d.Lon2, ad.Lon2, 1e-9)
	require.InDelta(t, d.Azi2, ad.Azi2, 1e-9)
	require.InDelta(t, 5e6, ad.Distance, 1e-6)

	// 90 degrees of arc from the equator heading north is the pole.
	r, err := e.ArcDirect(0, 0, 0, 90, Latitude|Distance)
	require.NoError(t, err)
	require.InDelta(t, 90, r.Lat2, 1e-9)
	require.InDelta(t, 10001965.729, r.Distance, 0.01)
}

func TestInverseAntipodal(t *testing.T) {
	e := WGS84()
	// Nearly antipodal points exercise the astroid starting guess; on
	// the WGS84 ellipsoid Newton's method always converges.
	pairs := [][4]float64{
		{0, 0, 0.5, 179.5},
		{0.5, 0, -0.5, 179.7},
		{10, 0, -10.1, 179.9},
		{0, 0, 0, 179.5},
		{30, 0, -30, 179.99},
	}
	for _, p := range pairs {
		r, err := e.Inverse(p[0], p[1], p[2], p[3], Standard)
		require.NoError(t, err)
		require.False(t, math.IsNaN(r.Distance), "pair %v", p)
		require.Greater(t, r.Distance, 19.5e6)
		require.Less(t, r.Distance, 20.1e6)

		// The solution closes: following azi1 for s12 lands on point 2.
		d, err := e.Direct(p[0], p[1], r.Azi1, r.Distance, Standard)
		require.NoError(t, err)
		require.InDelta(t, p[2], d.Lat2, 1e-8)
		require.InDelta(t, 0, math.Remainder(d.Lon2-p[3], 360), 1e-8)
	}
}

func TestInverseValidation(t *testing.T) {
	e := WGS84()
	for _, bad := range [][4]float64{
		{91, 0, 0, 0},
		{0, 0, -90.1, 0},
		{math.NaN(), 0, 0, 0},
		{0, 361, 0, 0},
		{0, 0, 0, -181},
		{0, math.NaN(), 0, 0},
	} {
		_, err := e.Inverse(bad[0], bad[1], bad[2], bad[3], Standard)
		require.Error(t, err, "args %v", bad)
	}
	_, err := e.Inverse(91, 0, 0, 0, Standard)
	require.ErrorContains(t, err, "latitude")
	_, err = e.Inverse(0, 361, 0, 0, Standard)
	require.ErrorContains(t, err, "longitude")

	// Longitudes up to 360 are fine.
	r, err := e.Inverse(0, 350, 0, 10, Distance)
	require.NoError(t, err)
	require.InDelta(t, WGS84A*20*degree, r.Distance, 1e-6)
}

func TestDirectValidation(t *testing.T) {
	e := WGS84()
	_, err := e.Direct(91, 0, 0, 1, Standard)
	require.ErrorContains(t, err, "latitude")
	_, err = e.Direct(0, 0, 361, 1, Standard)
	require.ErrorContains(t, err, "azimuth")
	_, err = e.Direct(0, 0, 0, math.Inf(1), Standard)
	require.ErrorContains(t, err, "distance")
	_, err = e.Direct(0, 0, 0, math.NaN(), Standard)
	require.ErrorContains(t, err, "distance")
	_, err = e.ArcDirect(0, 0, 0, math.NaN(), Standard)
	require.ErrorContains(t, err, "arc length")

	// Azimuths up to 360 are accepted and normalized.
	r, err := e.Direct(0, 0, 270, 1e6, Standard)
	require.NoError(t, err)
	r2, err := e.Direct(0, 0, -90, 1e6, Standard)
	require.NoError(t, err)
	require.Equal(t, r2.Lon2, r.Lon2)
	require.Equal(t, -90.0, r.Azi1)
}

func TestInverseComputedMask(t *testing.T) {
	e := WGS84()

	r, err := e.Inverse(10, 20, 30, 40, Distance)
	require.NoError(t, err)
	require.NotZero(t, r.Computed&Distance)
	require.Zero(t, r.Computed&Azimuth)
	require.Zero(t, r.Computed&Area)
	// Unselected fields are left alone.
	require.Equal(t, 0.0, r.Azi1)
	require.Equal(t, 0.0, r.Area)
	// The arc length comes for free.
	require.False(t, math.IsNaN(r.ArcLength))

	r, err = e.Inverse(10, 20, 30, 40, None)
	require.NoError(t, err)
	require.Zero(t, r.Computed)
	require.False(t, math.IsNaN(r.ArcLength))

	full, err := e.Inverse(10, 20, 30, 40, All)
	require.NoError(t, err)
	for _, sel := range []Mask{Azimuth, Distance, ReducedLength, GeodesicScale, Area} {
		require.NotZero(t, full.Computed&sel)
	}
}

// The quantities from a masked solve agree with the full solve.
func TestInverseMaskConsistency(t *testing.T) {
	e := WGS84()
	full, err := e.Inverse(-15, 3, 27, 141, All)
	require.NoError(t, err)
	dist, err := e.Inverse(-15, 3, 27, 141, Distance)
	require.NoError(t, err)
	require.Equal(t, full.Distance, dist.Distance)
	azi, err := e.Inverse(-15, 3, 27, 141, Azimuth)
	require.NoError(t, err)
	require.Equal(t, full.Azi1, azi.Azi1)
	require.Equal(t, full.Azi2, azi.Azi2)
	area, err := e.Inverse(-15, 3, 27, 141, Area)
	require.NoError(t, err)
	require.Equal(t, full.Area, area.Area)
}

func TestInverseExtremeEllipsoids(t *testing.T) {
	// On severely eccentric ellipsoids the inverse problem can fail to
	// converge for nearly antipodal points.  Failure must be reported
	// as NaN across the board, never as a panic or a wrong answer.
	for _, f := range []float64{0.9, 0.99, -5, -9} {
		e, err := NewEllipsoid(6.4e6, f)
		require.NoError(t, err)
		for _, lat := range []float64{0, 0.5, -0.7, 30, 89} {
			for _, lon := range []float64{179, 179.5, 179.9, 180} {
				r, err := e.Inverse(lat, 0, -lat+0.1, lon, Standard)
				require.NoError(t, err)
				if math.IsNaN(r.ArcLength) {
					require.True(t, math.IsNaN(r.Distance))
					require.True(t, math.IsNaN(r.Azi1))
					require.True(t, math.IsNaN(r.Azi2))
					continue
				}
				require.False(t, math.IsNaN(r.Distance))
				require.Greater(t, r.Distance, 0.0)
			}
		}
	}
}

// Mild flattenings converge everywhere, antipodes included.
func TestInverseAlwaysConvergesOnEarth(t *testing.T) {
	e := WGS84()
	rng := rand.New(rand.NewSource(31))
	for i := 0; i < 2000; i++ {
		lat1 := rng.Float64()*180 - 90
		lon1 := rng.Float64()*360 - 180
		// Bias toward the antipode of point 1.
		lat2 := -lat1 + rng.NormFloat64()*0.1
		lon2 := angNormalize(lon1 + 180 + rng.NormFloat64()*0.1)
		if !(math.Abs(lat2) <= 90) {
			continue
		}
		r, err := e.Inverse(lat1, lon1, lat2, lon2, Standard)
		require.NoError(t, err)
		require.False(t, math.IsNaN(r.Distance),
			"no convergence for (%v %v) (%v %v)", lat1, lon1, lat2, lon2)
		require.False(t, math.IsNaN(r.Azi1))
	}
}
