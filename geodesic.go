// Package geodesic solves the direct and inverse geodesic problems on an
// ellipsoid of revolution.
//
// The direct problem: given a starting point, an azimuth, and a distance,
// find the end point.  The inverse problem: given two points, find the
// shortest path between them, its length, and the azimuths at the two
// ends.  The solutions use series expansions carried to sixth order in
// the flattening, giving round-off level accuracy (about 15 nanometers on
// the earth) for |f| < 1/50, and are based on the algorithms in
// C. F. F. Karney, Algorithms for geodesics, J. Geodesy 87, 43-55 (2013),
// https://doi.org/10.1007/s00190-012-0578-z.
//
// Beyond the point-to-point problems, Line precomputes a geodesic line
// for repeated position queries along it, and Polygon accumulates the
// perimeter and area of a geodesic polygon vertex by vertex.
package geodesic

import (
	"math"

	"github.com/pkg/errors"
)

// Parameters of the WGS84 reference ellipsoid.
const (
	// WGS84A is the equatorial radius (meters).
	WGS84A = 6378137.0
	// WGS84F is the flattening.
	WGS84F = 1 / 298.257223563
)

const maxit = 50 // iteration cap for Newton's method in the inverse problem

var (
	tiny = math.Sqrt(minval)
	tol0 = epsilon
	// Check on bisection interval in Newton's method.  The iteration can
	// give an error of about 2 * tol0 in two cases: sbet2 = -sbet1 with
	// alp1 close to 90 degrees, and sbet2 = sbet1 with alp1 close to 0.
	tol1    = 200 * tol0
	tol2    = math.Sqrt(epsilon)
	xthresh = 1000 * tol2
)

// A Mask selects which quantities a geodesic computation produces.  Masks
// may be or'ed together.  The low bits are internal capabilities gating
// the coefficient series a Line carries; the high bits select outputs.
type Mask uint16

const (
	capNone Mask = 0
	capC1   Mask = 1 << 0
	capC1p  Mask = 1 << 1
	capC2   Mask = 1 << 2
	capC3   Mask = 1 << 3
	capC4   Mask = 1 << 4
	capAll  Mask = 0x1f

	outAll Mask = 0x7f80
)

// Output selectors for Inverse, Direct, ArcDirect, Line, and the position
// queries on a Line.
const (
	// None selects no output; the arc length is still computed.
	None Mask = 0
	// Latitude selects the latitude of point 2.
	Latitude Mask = 1<<7 | capNone
	// Longitude selects the longitude of point 2.
	Longitude Mask = 1<<8 | capC3
	// Azimuth selects the azimuths at the two points.
	Azimuth Mask = 1<<9 | capNone
	// Distance selects the distance between the points.
	Distance Mask = 1<<10 | capC1
	// DistanceIn allows a Line position query to take a distance, rather
	// than an arc length, as its parameter.
	DistanceIn Mask = 1<<11 | capC1 | capC1p
	// ReducedLength selects the reduced length of the geodesic.
	ReducedLength Mask = 1<<12 | capC1 | capC2
	// GeodesicScale selects the geodesic scales M12 and M21.
	GeodesicScale Mask = 1<<13 | capC1 | capC2
	// Area selects the area between the geodesic and the equator.
	Area Mask = 1<<14 | capC4
	// Standard selects the quantities of the classic direct and inverse
	// problems: positions, azimuths, and distance.
	Standard = Latitude | Longitude | Azimuth | Distance
	// All selects every output and grants every capability.
	All = outAll | capAll
)

// A Result reports the outcome of a geodesic computation.  Only the
// fields selected by the output mask carry meaningful values; Computed
// records which ones those are.  ArcLength is always computed.
//
// If the inverse problem fails to converge (possible only on severely
// eccentric ellipsoids), ArcLength and every selected field are NaN.
type Result struct {
	// Computed holds the output selectors actually satisfied.
	Computed Mask

	Lat2 float64 // latitude of point 2 (degrees)
	Lon2 float64 // longitude of point 2 (degrees)
	Azi1 float64 // azimuth at point 1 (degrees)
	Azi2 float64 // forward azimuth at point 2 (degrees)

	// Distance is s12, the distance from point 1 to point 2 (meters).
	Distance float64
	// ArcLength is a12, the arc length between the points on the
	// auxiliary sphere (degrees).
	ArcLength float64
	// ReducedLength is m12, the reduced length of the geodesic (meters).
	ReducedLength float64
	// M12 and M21 are the dimensionless geodesic scales of the two
	// points relative to each other.
	M12 float64
	M21 float64
	// Area is S12, the area between the geodesic and the equator
	// (meters squared).
	Area float64
}

// An Ellipsoid solves geodesic problems on an ellipsoid of revolution
// with a given equatorial radius and flattening.  An Ellipsoid is
// immutable and safe for concurrent use.
type Ellipsoid struct {
	a     float64 // equatorial radius
	f     float64 // flattening
	f1    float64 // 1 - f
	e2    float64 // first eccentricity squared
	ep2   float64 // second eccentricity squared, e2 / (1-e2)
	n     float64 // third flattening, f / (2-f)
	b     float64 // polar semi-axis
	c2    float64 // authalic radius squared
	etol2 float64 // error bound on the spherical starting guess

	a3x [nA3x]float64
	c3x [nC3x]float64
	c4x [nC4x]float64
}

// NewEllipsoid returns a solver for the ellipsoid with equatorial radius
// a (meters) and flattening f.  A flattening given as its reciprocal
// (f > 1, e.g. 298.257) is accepted and inverted; f < 0 gives a prolate
// ellipsoid and f == 0 a sphere.  The radius must be positive and the
// flattening less than 1.
func NewEllipsoid(a, f float64) (*Ellipsoid, error) {
	if f > 1 {
		// Accept the reciprocal flattening.
		f = 1 / f
	}
	e := &Ellipsoid{a: a, f: f}
	e.f1 = 1 - f
	e.e2 = f * (2 - f)
	e.ep2 = e.e2 / sq(e.f1)
	e.n = f / (2 - f)
	e.b = a * e.f1
	// The authalic radius squared: (a^2 + b^2 * atanh(e)/e) / 2, with the
	// atanh replaced by atan for a prolate ellipsoid.
	atanhe := 1.0
	if e.e2 > 0 {
		atanhe = math.Atanh(math.Sqrt(e.e2)) / math.Sqrt(e.e2)
	} else if e.e2 < 0 {
		atanhe = math.Atan(math.Sqrt(-e.e2)) / math.Sqrt(-e.e2)
	}
	e.c2 = (sq(e.a) + sq(e.b)*atanhe) / 2
	// The sig12 threshold for "really short" in inverseStart.
	e.etol2 = tol2 / max(0.1, math.Sqrt(math.Abs(e.e2)))
	if !(isfinite(e.a) && e.a > 0) {
		return nil, errors.New("equatorial radius is not positive")
	}
	if !(isfinite(e.b) && e.b > 0) {
		return nil, errors.New("polar semi-axis is not positive")
	}
	e.a3coeff()
	e.c3coeff()
	e.c4coeff()
	return e, nil
}

// WGS84 returns a solver for the WGS84 reference ellipsoid.
func WGS84() *Ellipsoid {
	e, _ := NewEllipsoid(WGS84A, WGS84F) // the WGS84 constants are valid
	return e
}

// Radius returns the equatorial radius a (meters).
func (e *Ellipsoid) Radius() float64 { return e.a }

// Flattening returns the flattening f.
func (e *Ellipsoid) Flattening() float64 { return e.f }

// EllipsoidArea returns the total area of the ellipsoid (meters squared).
func (e *Ellipsoid) EllipsoidArea() float64 {
	return 4 * math.Pi * e.c2
}

// a3coeff fills the coefficients of the A3 polynomial in the third
// flattening n.
func (e *Ellipsoid) a3coeff() {
	n := e.n
	e.a3x[0] = 1
	e.a3x[1] = (n - 1) / 2
	e.a3x[2] = (n*(3*n-1) - 2) / 8
	e.a3x[3] = ((-n-3)*n - 1) / 16
	e.a3x[4] = (-2*n - 3) / 64
	e.a3x[5] = -3.0 / 128
}

// c3coeff fills the coefficients of the C3 polynomials in the third
// flattening n.
func (e *Ellipsoid) c3coeff() {
	n := e.n
	e.c3x[0] = (1 - n) / 4
	e.c3x[1] = (1 - n*n) / 8
	e.c3x[2] = ((3-n)*n + 3) / 64
	e.c3x[3] = (2*n + 5) / 128
	e.c3x[4] = 3.0 / 128
	e.c3x[5] = ((n-3)*n + 2) / 32
	e.c3x[6] = ((-3*n-2)*n + 3) / 64
	e.c3x[7] = (n + 3) / 128
	e.c3x[8] = 5.0 / 256
	e.c3x[9] = (n*(5*n-9) + 5) / 192
	e.c3x[10] = (9 - 10*n) / 384
	e.c3x[11] = 7.0 / 512
	e.c3x[12] = (7 - 14*n) / 512
	e.c3x[13] = 7.0 / 512
	e.c3x[14] = 21.0 / 2560
}

// c4coeff fills the coefficients of the C4 polynomials in the second
// eccentricity squared ep2.
func (e *Ellipsoid) c4coeff() {
	ep2 := e.ep2
	e.c4x[0] = (ep2*(ep2*(ep2*((832-640*ep2)*ep2-1144)+1716)-3003) + 30030) / 45045
	e.c4x[1] = (ep2*(ep2*((832-640*ep2)*ep2-1144)+1716) - 3003) / 60060
	e.c4x[2] = (ep2*((208-160*ep2)*ep2-286) + 429) / 18018
	e.c4x[3] = ((104-80*ep2)*ep2 - 143) / 10296
	e.c4x[4] = (13 - 10*ep2) / 1430
	e.c4x[5] = -1.0 / 156
	e.c4x[6] = (ep2*(ep2*(ep2*(640*ep2-832)+1144)-1716) + 3003) / 540540
	e.c4x[7] = (ep2*(ep2*(160*ep2-208)+286) - 429) / 108108
	e.c4x[8] = (ep2*(80*ep2-104) + 143) / 51480
	e.c4x[9] = (10*ep2 - 13) / 6435
	e.c4x[10] = 5.0 / 3276
	e.c4x[11] = (ep2*((208-160*ep2)*ep2-286) + 429) / 900900
	e.c4x[12] = ((104-80*ep2)*ep2 - 143) / 257400
	e.c4x[13] = (13 - 10*ep2) / 25025
	e.c4x[14] = -1.0 / 2184
	e.c4x[15] = (ep2*(80*ep2-104) + 143) / 2522520
	e.c4x[16] = (10*ep2 - 13) / 140140
	e.c4x[17] = 5.0 / 45864
	e.c4x[18] = (13 - 10*ep2) / 1621620
	e.c4x[19] = -1.0 / 58968
	e.c4x[20] = 1.0 / 792792
}

// a3f evaluates A3 = sum(a3x[k] * eps^k, k, 0, nA3x-1) by Horner's method.
func (e *Ellipsoid) a3f(eps float64) float64 {
	v := 0.0
	for i := nA3x - 1; i >= 0; i-- {
		v = eps*v + e.a3x[i]
	}
	return v
}

// c3f evaluates the C3 coefficients at eps by Horner's method; elements
// c[1] through c[nC3-1] are set, c[0] is unused.
func (e *Ellipsoid) c3f(eps float64) (c [nC3]float64) {
	j := nC3x
	for k := nC3 - 1; k > 0; k-- {
		t := 0.0
		for i := 0; i < nC3-k; i++ {
			j--
			t = eps*t + e.c3x[j]
		}
		c[k] = t
	}
	mult := 1.0
	for k := 1; k < nC3; k++ {
		mult *= eps
		c[k] *= mult
	}
	return c
}

// c4f evaluates the C4 coefficients at k2 by Horner's method; elements
// c[0] through c[nC4-1] are set.
func (e *Ellipsoid) c4f(k2 float64) (c [nC4]float64) {
	j := nC4x
	for k := nC4; k > 0; k-- {
		t := 0.0
		for i := 0; i < nC4-k+1; i++ {
			j--
			t = k2*t + e.c4x[j]
		}
		c[k-1] = t
	}
	mult := 1.0
	for k := 1; k < nC4; k++ {
		mult *= k2
		c[k] *= mult
	}
	return c
}

// lengths returns the length integrals between sig1 and sig2 on a
// geodesic parameterized by eps: s12b is distance/b, m12a is reduced
// length/a, and m0 is the coefficient of the secular term of the reduced
// length.  With scalep the geodesic scales M12 and M21 are computed as
// well; otherwise they are NaN.
func (e *Ellipsoid) lengths(eps, sig12, ssig1, csig1, ssig2, csig2, cbet1, cbet2 float64, scalep bool) (s12b, m12a, m0, M12, M21 float64) {
	c1a := c1f(eps)
	c2a := c2f(eps)
	a1m1 := a1m1f(eps)
	ab1 := (1 + a1m1) * (sinCosSeries(true, ssig2, csig2, c1a[:]) -
		sinCosSeries(true, ssig1, csig1, c1a[:]))
	a2m1 := a2m1f(eps)
	ab2 := (1 + a2m1) * (sinCosSeries(true, ssig2, csig2, c2a[:]) -
		sinCosSeries(true, ssig1, csig1, c2a[:]))
	m0 = a1m1 - a2m1
	w1 := math.Sqrt(1 - e.e2*sq(cbet1))
	w2 := math.Sqrt(1 - e.e2*sq(cbet2))
	j12 := m0*sig12 + (ab1 - ab2)
	// The parens around (csig1 * ssig2) and (ssig1 * csig2) ensure
	// accurate cancellation for coincident points.
	m12a = (w2*(csig1*ssig2) - w1*(ssig1*csig2)) - e.f1*csig1*csig2*j12
	s12b = (1+a1m1)*sig12 + ab1
	M12, M21 = math.NaN(), math.NaN()
	if scalep {
		csig12 := csig1*csig2 + ssig1*ssig2
		j12 *= e.f1
		M12 = csig12 + (e.e2*(sq(cbet1)-sq(cbet2))*ssig2/(w1+w2)-csig2*j12)*ssig1/w1
		M21 = csig12 - (e.e2*(sq(cbet1)-sq(cbet2))*ssig1/(w1+w2)-csig1*j12)*ssig2/w2
	}
	return s12b, m12a, m0, M12, M21
}

// astroid solves the astroid equation
//
//	k^4 + 2*k^3 - (x^2 + y^2 - 1)*k^2 - 2*y^2*k - y^2 = 0
//
// for the positive root k.  This gives the starting azimuth for the
// near-antipodal inverse problem; x and y are the scaled coordinates of
// point 2 relative to the antipode of point 1.
func astroid(x, y float64) float64 {
	p := sq(x)
	q := sq(y)
	r := (p + q - 1) / 6
	var k float64
	if !(q == 0 && r <= 0) {
		// Avoid possible division by zero when r = 0 by multiplying the
		// equations for s and t by r^3 and r, resp.
		s := p * q / 4 // S = r^3 * s
		r2 := sq(r)
		r3 := r * r2
		// The discriminant of the quadratic equation for T3.  This is
		// zero on the evolute curve p^(1/3) + q^(1/3) = 1.
		disc := s * (s + 2*r3)
		u := r
		if disc >= 0 {
			t3 := s + r3
			// Pick the sign on the sqrt to maximize abs(T3), to minimize
			// loss of precision due to cancellation.  The result is
			// unchanged because of the way the T is used in definition
			// of u.
			if t3 < 0 {
				t3 += -math.Sqrt(disc)
			} else {
				t3 += math.Sqrt(disc)
			}
			// math.Cbrt always returns the real root: Cbrt(-8) = -2.
			t := math.Cbrt(t3) // T = r * t
			u += t
			// T can be zero; but then r2 / T -> 0.
			if t != 0 {
				u += r2 / t
			}
		} else {
			// T is complex, but the way u is defined the result is real.
			ang := math.Atan2(math.Sqrt(-disc), -(s + r3))
			// There are three possible cube roots.  We choose the root
			// which avoids cancellation.  Note that disc < 0 implies
			// that r < 0.
			u += 2 * r * math.Cos(ang/3)
		}
		v := math.Sqrt(sq(u) + q) // guaranteed positive
		// Avoid loss of accuracy when u < 0.
		var uv float64
		if u < 0 {
			uv = q / (v - u)
		} else {
			uv = u + v
		}
		w := (uv - q) / (2 * v) // positive
		// Rearrange the expression for k to avoid loss of accuracy due
		// to subtraction.  Division by 0 not possible because uv > 0,
		// w >= 0.
		k = uv / (math.Sqrt(uv+sq(w)) + w) // guaranteed positive
	} else {
		// q == 0 && r <= 0: y = 0 with |x| <= 1.  Handle this case
		// directly: for y small, the positive root is
		// k = abs(y) / sqrt(1 - x^2).
		k = 0
	}
	return k
}

// inverseStart returns a starting point for Newton's method in salp1 and
// calp1, indicated by sig12 = -1.  If the problem is a really short line
// for which the spherical solution is already accurate enough, it instead
// returns sig12 >= 0 along with the azimuth at the second point in salp2
// and calp2.
func (e *Ellipsoid) inverseStart(sbet1, cbet1, sbet2, cbet2, lam12 float64) (sig12, salp1, calp1, salp2, calp2 float64) {
	sig12 = -1
	salp2, calp2 = math.NaN(), math.NaN()
	// bet12 = bet2 - bet1 in [0, pi); bet12a = bet2 + bet1 in (-pi, 0]
	sbet12 := sbet2*cbet1 - cbet2*sbet1
	cbet12 := cbet2*cbet1 + sbet2*sbet1
	sbet12a := sbet2 * cbet1
	sbet12a += cbet2 * sbet1

	shortline := cbet12 >= 0 && sbet12 < 0.5 && lam12 <= math.Pi/6
	omg12 := lam12
	if shortline {
		omg12 /= math.Sqrt(1 - e.e2*sq(cbet1))
	}
	somg12, comg12 := math.Sin(omg12), math.Cos(omg12)

	salp1 = cbet2 * somg12
	if comg12 >= 0 {
		calp1 = sbet12 + cbet2*sbet1*sq(somg12)/(1+comg12)
	} else {
		calp1 = sbet12a - cbet2*sbet1*sq(somg12)/(1-comg12)
	}

	ssig12 := math.Hypot(salp1, calp1)
	csig12 := sbet1*sbet2 + cbet1*cbet2*comg12

	if shortline && ssig12 < e.etol2 {
		// Really short lines.
		salp2 = cbet1 * somg12
		calp2 = sbet12 - cbet1*sbet2*sq(somg12)/(1+comg12)
		salp2, calp2 = sinCosNorm(salp2, calp2)
		// Set return value.
		sig12 = math.Atan2(ssig12, csig12)
	} else if csig12 >= 0 || ssig12 >= 3*math.Abs(e.f)*math.Pi*sq(cbet1) {
		// Nothing to do, zeroth order spherical approximation is OK.
	} else {
		// Scale lam12 and bet2 to x, y coordinate system where the
		// antipodal point is at the origin and the singular point is at
		// y = 0, x = -1.
		var x, y, lamscale, betscale float64
		if e.f >= 0 { // in fact f == 0 does not get here
			// x = dlong, y = dlat
			k2 := sq(sbet1) * e.ep2
			eps := k2 / (2*(1+math.Sqrt(1+k2)) + k2)
			lamscale = e.f * cbet1 * e.a3f(eps) * math.Pi
			betscale = lamscale * cbet1
			x = (lam12 - math.Pi) / lamscale
			y = sbet12a / betscale
		} else { // f < 0
			// x = dlat, y = dlong
			cbet12a := cbet2*cbet1 - sbet2*sbet1
			bet12a := math.Atan2(sbet12a, cbet12a)
			// In the case of lon12 = 180, this repeats a calculation
			// made in the meridian branch of the inverse problem.
			_, m12a, m0, _, _ := e.lengths(e.n, math.Pi+bet12a,
				sbet1, -cbet1, sbet2, cbet2, cbet1, cbet2, false)
			x = -1 + m12a/(e.f1*cbet1*cbet2*m0*math.Pi)
			if x < -0.01 {
				betscale = sbet12a / x
			} else {
				betscale = -e.f * sq(cbet1) * math.Pi
			}
			lamscale = betscale / cbet1
			y = (lam12 - math.Pi) / lamscale
		}

		if y > -tol1 && x > -1-xthresh {
			// Strip near cut.
			if e.f >= 0 {
				salp1 = min(1.0, -x)
				calp1 = -math.Sqrt(1 - sq(salp1))
			} else {
				if x > -tol1 {
					calp1 = max(0.0, x)
				} else {
					calp1 = max(-1.0, x)
				}
				salp1 = math.Sqrt(1 - sq(calp1))
			}
		} else {
			// Estimate alp1, by solving the astroid problem.
			//
			// Could estimate alpha1 = theta + pi/2, directly, i.e.,
			//   calp1 = y/k; salp1 = -x/(1+k) for f >= 0
			//   calp1 = x/(1+k); salp1 = -y/k for f < 0 (need to check)
			//
			// However, it's better to estimate omg12 from the astroid
			// and use spherical formulas to compute alp1.  This reduces
			// the mean number of Newton iterations for astroid cases
			// from 2.24 (min 0, max 6) to 2.12 (min 0, max 5).
			k := astroid(x, y)
			var omg12a float64
			if e.f >= 0 {
				omg12a = lamscale * -x * k / (1 + k)
			} else {
				omg12a = lamscale * -y * (1 + k) / k
			}
			somg12 = math.Sin(omg12a)
			comg12 = -math.Cos(omg12a)
			// Update spherical estimate of alp1 using omg12 instead of
			// lam12.
			salp1 = cbet2 * somg12
			calp1 = sbet12a - cbet2*sbet1*sq(somg12)/(1-comg12)
		}
	}
	salp1, calp1 = sinCosNorm(salp1, calp1)
	return sig12, salp1, calp1, salp2, calp2
}

// lambda12 returns the longitude difference lam12 implied by the azimuth
// guess salp1, calp1, together with the quantities needed to update the
// guess and, after convergence, to finish the inverse problem.  With
// diffp it also returns dlam12, the derivative of lam12 with respect to
// alp1.
func (e *Ellipsoid) lambda12(sbet1, cbet1, sbet2, cbet2, salp1, calp1 float64, diffp bool) (lam12, salp2, calp2, sig12, ssig1, csig1, ssig2, csig2, eps, domg12, dlam12 float64) {
	if sbet1 == 0 && calp1 == 0 {
		// Break the degeneracy in this case; the equatorial geodesic
		// has already been handled.
		calp1 = -tiny
	}

	// sin(alp1) * cos(bet1) = sin(alp0)
	salp0 := salp1 * cbet1
	calp0 := math.Hypot(calp1, salp1*sbet1) // calp0 > 0

	// tan(bet1) = tan(sig1) * cos(alp1)
	// tan(omg1) = sin(alp0) * tan(sig1) = tan(alp1) * sin(bet1)
	ssig1 = sbet1
	somg1 := salp0 * sbet1
	csig1 = calp1 * cbet1
	comg1 := csig1
	ssig1, csig1 = sinCosNorm(ssig1, csig1)
	somg1, comg1 = sinCosNorm(somg1, comg1)

	// Enforce symmetries in the case abs(bet2) = -bet1.  Otherwise the
	// Newton iteration can pick up spurious asymmetries.
	// sin(alp2) * cos(bet2) = sin(alp0)
	if cbet2 != cbet1 {
		salp2 = salp0 / cbet2
	} else {
		salp2 = salp1
	}
	// calp2 = sqrt(1 - sq(salp2))
	//       = sqrt(sq(calp0) - sq(sbet2)) / cbet2
	// and subst for calp0 and rearrange to give (choose positive sqrt
	// to give alp2 in [0, pi/2]).
	if cbet2 != cbet1 || math.Abs(sbet2) != -sbet1 {
		var d float64
		if cbet1 < -sbet1 {
			d = (cbet2 - cbet1) * (cbet1 + cbet2)
		} else {
			d = (sbet1 - sbet2) * (sbet1 + sbet2)
		}
		calp2 = math.Sqrt(sq(calp1*cbet1)+d) / cbet2
	} else {
		calp2 = math.Abs(calp1)
	}
	// tan(bet2) = tan(sig2) * cos(alp2)
	// tan(omg2) = sin(alp0) * tan(sig2)
	ssig2 = sbet2
	somg2 := salp0 * sbet2
	csig2 = calp2 * cbet2
	comg2 := csig2
	ssig2, csig2 = sinCosNorm(ssig2, csig2)
	somg2, comg2 = sinCosNorm(somg2, comg2)

	// sig12 = sig2 - sig1, limit to [0, pi]
	sig12 = math.Atan2(max(csig1*ssig2-ssig1*csig2, 0.0),
		csig1*csig2+ssig1*ssig2)
	// omg12 = omg2 - omg1, limit to [0, pi]
	omg12 := math.Atan2(max(comg1*somg2-somg1*comg2, 0.0),
		comg1*comg2+somg1*somg2)

	k2 := sq(calp0) * e.ep2
	eps = k2 / (2*(1+math.Sqrt(1+k2)) + k2)
	c3a := e.c3f(eps)
	b312 := sinCosSeries(true, ssig2, csig2, c3a[:]) -
		sinCosSeries(true, ssig1, csig1, c3a[:])
	h0 := -e.f * e.a3f(eps)
	domg12 = salp0 * h0 * (sig12 + b312)
	lam12 = omg12 + domg12

	if diffp {
		if calp2 == 0 {
			dlam12 = -2 * math.Sqrt(1-e.e2*sq(cbet1)) / sbet1
		} else {
			_, dlam12, _, _, _ = e.lengths(eps, sig12, ssig1, csig1,
				ssig2, csig2, cbet1, cbet2, false)
			dlam12 /= calp2 * cbet2
		}
	}
	return
}

// newtonState tracks the progress of the Newton refinement in the inverse
// problem.
type newtonState int

const (
	// newtonSearching: taking full Newton steps with the derivative.
	newtonSearching newtonState = iota
	// newtonPolishing: the step size test indicates convergence; take
	// one more derivative-free evaluation and then stop.
	newtonPolishing
	// newtonConverged: the final evaluation met the tolerance.
	newtonConverged
	// newtonFailed: the final evaluation missed the tolerance or the
	// iteration limit was reached.
	newtonFailed
)

// genInverse solves the inverse problem, returning the packed quantities
// a12, s12, azi1, azi2, m12, M12, M21, S12.  Quantities not requested by
// outmask, and all quantities if the solution fails to converge, are NaN.
func (e *Ellipsoid) genInverse(lat1, lon1, lat2, lon2 float64, outmask Mask) (a12, s12, azi1, azi2, m12, M12, M21, S12 float64) {
	a12 = math.NaN()
	s12, m12 = math.NaN(), math.NaN()
	azi1, azi2 = math.NaN(), math.NaN()
	M12, M21 = math.NaN(), math.NaN()
	S12 = math.NaN()

	outmask &= outAll
	lon1 = angNormalize(lon1)
	lon12 := angNormalize(angNormalize(lon2) - lon1)
	// If very close to being on the same meridian, then make it so.
	lon12 = angRound(lon12)
	// Make longitude difference positive.
	lonsign := 1.0
	if lon12 < 0 {
		lonsign = -1
	}
	lon12 *= lonsign
	if lon12 == 180 {
		lonsign = 1
	}
	// If really close to the equator, treat as on equator.
	lat1 = angRound(lat1)
	lat2 = angRound(lat2)
	// Swap points so that point with higher (abs) latitude is point 1.
	swapp := 1.0
	if math.Abs(lat1) < math.Abs(lat2) {
		swapp = -1
	}
	if swapp < 0 {
		lonsign *= -1
		lat1, lat2 = lat2, lat1
	}
	// Make lat1 <= 0.
	latsign := 1.0
	if lat1 >= 0 {
		latsign = -1
	}
	lat1 *= latsign
	lat2 *= latsign
	// Now we have
	//
	//	0 <= lon12 <= 180
	//	-90 <= lat1 <= 0
	//	lat1 <= lat2 <= -lat1
	//
	// lonsign, swapp, latsign register the transformation to bring the
	// coordinates to this canonical form.  In all cases, 1 means no
	// change was made.  We make these transformations so that there are
	// few cases to check, e.g., on verifying quadrants in atan2.  In
	// addition, this enforces some symmetries in the results returned.

	phi := lat1 * degree
	// Ensure cbet1 = +epsilon at poles.
	sbet1 := e.f1 * math.Sin(phi)
	cbet1 := math.Cos(phi)
	if lat1 == -90 {
		cbet1 = tiny
	}
	sbet1, cbet1 = sinCosNorm(sbet1, cbet1)

	phi = lat2 * degree
	// Ensure cbet2 = +epsilon at poles.
	sbet2 := e.f1 * math.Sin(phi)
	cbet2 := math.Cos(phi)
	if math.Abs(lat2) == 90 {
		cbet2 = tiny
	}
	sbet2, cbet2 = sinCosNorm(sbet2, cbet2)

	// If cbet1 < -sbet1, then cbet2 - cbet1 is a sensitive measure of the
	// |bet1| - |bet2|.  Alternatively (cbet1 >= -sbet1), abs(sbet2) + sbet1
	// is a better measure.  These quantities feed the computation of alp2
	// in lambda12 and sometimes underflow to zero, in which case bet2 =
	// +/- bet1 exactly is forced here.
	if cbet1 < -sbet1 {
		if cbet2 == cbet1 {
			if sbet2 < 0 {
				sbet2 = sbet1
			} else {
				sbet2 = -sbet1
			}
		}
	} else {
		if math.Abs(sbet2) == -sbet1 {
			cbet2 = cbet1
		}
	}

	lam12 := lon12 * degree
	slam12 := math.Sin(lam12)
	if lon12 == 180 {
		slam12 = 0
	}
	clam12 := math.Cos(lam12) // lon12 == 90 isn't interesting

	var sig12, salp1, calp1, salp2, calp2 float64
	var s12x, m12x float64
	var omg12 float64

	meridian := lat1 == -90 || slam12 == 0
	if meridian {
		// Endpoints are on a single full meridian, so the geodesic might
		// lie on a meridian.
		calp1, salp1 = clam12, slam12 // head to the target longitude
		calp2, salp2 = 1, 0           // at the target we're heading north

		// tan(bet) = tan(sig) * cos(alp)
		ssig1, csig1 := sbet1, calp1*cbet1
		ssig2, csig2 := sbet2, calp2*cbet2

		// sig12 = sig2 - sig1
		sig12 = math.Atan2(max(csig1*ssig2-ssig1*csig2, 0.0),
			csig1*csig2+ssig1*ssig2)
		s12x, m12x, _, M12, M21 = e.lengths(e.n, sig12,
			ssig1, csig1, ssig2, csig2, cbet1, cbet2,
			outmask&GeodesicScale != 0)
		// Add the check for sig12 since zero length geodesics might
		// yield m12 < 0.  Test case was
		//
		//	echo 20.001 0 20.001 0 | Geod -i
		//
		// In fact, we will have sig12 > pi/2 for meridional geodesic
		// which is not a shortest path.
		if sig12 < 1 || m12x >= 0 {
			m12x *= e.a
			s12x *= e.b
			a12 = sig12 / degree
		} else {
			// m12 < 0, i.e., prolate and too close to anti-podal.
			meridian = false
		}
	}

	if !meridian && sbet1 == 0 && // and sbet2 == 0
		// Mimic the way lambda12 works with calp1 = 0.
		(e.f <= 0 || lam12 <= math.Pi-e.f*math.Pi) {
		// Geodesic runs along the equator.
		calp1, calp2 = 0, 0
		salp1, salp2 = 1, 1
		s12x = e.a * lam12
		m12x = e.b * math.Sin(lam12/e.f1)
		if outmask&GeodesicScale != 0 {
			M12 = math.Cos(lam12 / e.f1)
			M21 = M12
		}
		a12 = lon12 / e.f1
		sig12 = lam12 / e.f1
		omg12 = sig12
	} else if !meridian {
		// Now point1 and point2 belong within a hemisphere bounded by a
		// meridian and geodesic is neither meridional nor equatorial.
		sig12, salp1, calp1, salp2, calp2 = e.inverseStart(sbet1, cbet1,
			sbet2, cbet2, lam12)

		if sig12 >= 0 {
			// Short lines case (the start gave salp2 and calp2).
			w1 := math.Sqrt(1 - e.e2*sq(cbet1))
			s12x = sig12 * e.a * w1
			m12x = sq(w1) * e.a / e.f1 * math.Sin(sig12*e.f1/w1)
			if outmask&GeodesicScale != 0 {
				M12 = math.Cos(sig12 * e.f1 / w1)
				M21 = M12
			}
			a12 = sig12 / degree
			omg12 = lam12 / w1
		} else {
			// Newton's method.  The rotation sdalp1, cdalp1 applies the
			// correction to the azimuth guess; the state machine decides
			// when the correction has stopped earning its keep.
			var ssig1, csig1, ssig2, csig2, eps float64
			var ov float64
			state := newtonSearching
			for numit := 0; numit < maxit; numit++ {
				var v, dv float64
				v, salp2, calp2, sig12, ssig1, csig1, ssig2, csig2,
					eps, omg12, dv = e.lambda12(sbet1, cbet1, sbet2,
					cbet2, salp1, calp1, state == newtonSearching)
				v -= lam12
				if state != newtonSearching || !(math.Abs(v) > tiny) {
					// A NaN residual lands here as well and fails the
					// acceptance test.
					if !(math.Abs(v) <= max(tol1, ov)) {
						state = newtonFailed
					} else {
						state = newtonConverged
					}
					break
				}
				dalp1 := -v / dv
				sdalp1, cdalp1 := math.Sin(dalp1), math.Cos(dalp1)
				nsalp1 := salp1*cdalp1 + calp1*sdalp1
				calp1 = calp1*cdalp1 - salp1*sdalp1
				salp1 = max(0.0, nsalp1)
				salp1, calp1 = sinCosNorm(salp1, calp1)
				// In some regimes we don't get quadratic convergence
				// because the slope of the lambda12(alp1) curve is small
				// at the root.  So we accept the step once the residual
				// or its anticipated reduction drops below the noise.
				if !(math.Abs(v) >= tol1 && sq(v) >= ov*tol0) {
					state = newtonPolishing
				}
				ov = math.Abs(v)
			}

			if state != newtonConverged {
				// Signal failure; all the return values are still NaN.
				return a12, s12, azi1, azi2, m12, M12, M21, S12
			}

			s12x, m12x, _, M12, M21 = e.lengths(eps, sig12,
				ssig1, csig1, ssig2, csig2, cbet1, cbet2,
				outmask&GeodesicScale != 0)
			m12x *= e.a
			s12x *= e.b
			a12 = sig12 / degree
			omg12 = lam12 - omg12
		}
	}

	if outmask&Distance != 0 {
		s12 = 0 + s12x // convert -0 to 0
	}
	if outmask&ReducedLength != 0 {
		m12 = 0 + m12x // convert -0 to 0
	}

	if outmask&Area != 0 {
		// From lambda12: sin(alp1) * cos(bet1) = sin(alp0)
		salp0 := salp1 * cbet1
		calp0 := math.Hypot(calp1, salp1*sbet1) // calp0 > 0
		if calp0 != 0 && salp0 != 0 {
			// From lambda12: tan(bet) = tan(sig) * cos(alp)
			ssig1, csig1 := sbet1, calp1*cbet1
			ssig2, csig2 := sbet2, calp2*cbet2
			k2 := sq(calp0) * e.ep2
			// Multiplier = a^2 * e^2 * cos(alpha0) * sin(alpha0).
			a4 := sq(e.a) * calp0 * salp0 * e.e2
			ssig1, csig1 = sinCosNorm(ssig1, csig1)
			ssig2, csig2 = sinCosNorm(ssig2, csig2)
			c4a := e.c4f(k2)
			b41 := sinCosSeries(false, ssig1, csig1, c4a[:])
			b42 := sinCosSeries(false, ssig2, csig2, c4a[:])
			S12 = a4 * (b42 - b41)
		} else {
			// Avoid problems with indeterminate sig1, sig2 on equator.
			S12 = 0
		}

		var alp12 float64
		if !meridian && omg12 < 0.75*math.Pi && // omg12 < 3/4 * pi
			sbet2-sbet1 < 1.75 { // lat2 - lat1 < ~120 deg
			// Use tan(Gamma/2) = tan(omg12/2) *
			// (tan(bet1/2) + tan(bet2/2)) / (1 + tan(bet1/2)*tan(bet2/2))
			// with tan(x/2) = sin(x) / (1 + cos(x))
			somg12, domg12 := math.Sin(omg12), 1+math.Cos(omg12)
			dbet1, dbet2 := 1+cbet1, 1+cbet2
			alp12 = 2 * math.Atan2(somg12*(sbet1*dbet2+sbet2*dbet1),
				domg12*(sbet1*sbet2+dbet1*dbet2))
		} else {
			// alp12 = alp2 - alp1, used in atan2 so no need to normalize.
			salp12 := salp2*calp1 - calp2*salp1
			calp12 := calp2*calp1 + salp2*salp1
			// The right thing appears to happen if alp1 = +/-180 and
			// alp2 = 0, viz salp12 = -0 and alp12 = -180.  However this
			// depends on the sign being attached to 0 correctly.  The
			// following ensures the correct behavior.
			if salp12 == 0 && calp12 < 0 {
				salp12 = tiny * calp1
				calp12 = -1
			}
			alp12 = math.Atan2(salp12, calp12)
		}
		S12 += e.c2 * alp12
		S12 *= swapp * lonsign * latsign
		// Convert -0 to 0.
		S12 += 0
	}

	// Convert calp, salp to azimuth accounting for lonsign, swapp, latsign.
	if swapp < 0 {
		salp1, salp2 = salp2, salp1
		calp1, calp2 = calp2, calp1
		if outmask&GeodesicScale != 0 {
			M12, M21 = M21, M12
		}
	}
	salp1 *= swapp * lonsign
	calp1 *= swapp * latsign
	salp2 *= swapp * lonsign
	calp2 *= swapp * latsign

	if outmask&Azimuth != 0 {
		// The minus signs give the range [-180, 180).  0- converts -0
		// to +0.
		azi1 = 0 - math.Atan2(-salp1, calp1)/degree
		azi2 = 0 - math.Atan2(-salp2, calp2)/degree
	}
	// Returned value in [0, 180].
	return a12, s12, azi1, azi2, m12, M12, M21, S12
}

// checkPosition validates a latitude and longitude and returns the
// normalized longitude.
func checkPosition(lat, lon float64) (float64, error) {
	if !(math.Abs(lat) <= 90) {
		return lon, errors.Errorf("latitude %v not in [-90, 90]", lat)
	}
	if !(lon >= -180 && lon <= 360) {
		return lon, errors.Errorf("longitude %v not in [-180, 360]", lon)
	}
	return angNormalize(lon), nil
}

// checkAzimuth validates an azimuth and returns it normalized.
func checkAzimuth(azi float64) (float64, error) {
	if !(azi >= -180 && azi <= 360) {
		return azi, errors.Errorf("azimuth %v not in [-180, 360]", azi)
	}
	return angNormalize(azi), nil
}

func checkDistance(s float64) error {
	if !isfinite(s) {
		return errors.Errorf("distance %v not a finite number", s)
	}
	return nil
}

// Inverse solves the inverse geodesic problem: find the shortest geodesic
// between two points.
//
// Param lat1 is latitude of point 1 (degrees).  It must lie in [-90, 90].
// Param lon1 is longitude of point 1 (degrees).  It must lie in [-180, 360].
// Param lat2 is latitude of point 2 (degrees).  It must lie in [-90, 90].
// Param lon2 is longitude of point 2 (degrees).  It must lie in [-180, 360].
// Param outmask selects the Result fields to compute; Standard gives the
// classic inverse problem.  Latitude and Longitude selectors are ignored
// here since both points are inputs.
//
// The returned azimuths are reckoned clockwise from north, in [-180, 180).
// If either point is at a pole, its azimuth is taken as the limit along
// the geodesic.
//
// On a badly eccentric ellipsoid the solver can fail to converge for
// nearly antipodal points; the Result then carries NaN in every selected
// field.  That is not reported as an error: the arguments were valid.
func (e *Ellipsoid) Inverse(lat1, lon1, lat2, lon2 float64, outmask Mask) (Result, error) {
	var r Result
	lon1, err := checkPosition(lat1, lon1)
	if err != nil {
		return r, err
	}
	lon2, err = checkPosition(lat2, lon2)
	if err != nil {
		return r, err
	}
	outmask &= outAll
	a12, s12, azi1, azi2, m12, M12, M21, S12 := e.genInverse(lat1, lon1, lat2, lon2, outmask)
	r.ArcLength = a12
	r.Computed = outmask & (Azimuth | Distance | ReducedLength | GeodesicScale | Area)
	if outmask&Distance != 0 {
		r.Distance = s12
	}
	if outmask&Azimuth != 0 {
		r.Azi1, r.Azi2 = azi1, azi2
	}
	if outmask&ReducedLength != 0 {
		r.ReducedLength = m12
	}
	if outmask&GeodesicScale != 0 {
		r.M12, r.M21 = M12, M21
	}
	if outmask&Area != 0 {
		r.Area = S12
	}
	return r, nil
}

// Direct solves the direct geodesic problem: from a point, an azimuth,
// and a distance, find the end point.
//
// Param lat1 is latitude of point 1 (degrees).  It must lie in [-90, 90].
// Param lon1 is longitude of point 1 (degrees).  It must lie in [-180, 360].
// Param azi1 is azimuth at point 1 (degrees).  It must lie in [-180, 360].
// Param s12 is the distance from point 1 to point 2 (meters); it can be
// negative, in which case the geodesic is followed backwards.
// Param outmask selects the Result fields to compute; Standard gives the
// classic direct problem.
func (e *Ellipsoid) Direct(lat1, lon1, azi1, s12 float64, outmask Mask) (Result, error) {
	lon1, err := checkPosition(lat1, lon1)
	if err != nil {
		return Result{}, err
	}
	azi1, err = checkAzimuth(azi1)
	if err != nil {
		return Result{}, err
	}
	if err := checkDistance(s12); err != nil {
		return Result{}, err
	}
	return e.genDirect(lat1, lon1, azi1, false, s12, outmask), nil
}

// ArcDirect solves the direct geodesic problem with the length of the
// geodesic given as the arc length a12 (degrees) on the auxiliary sphere
// instead of a distance.  A negative a12 follows the geodesic backwards.
func (e *Ellipsoid) ArcDirect(lat1, lon1, azi1, a12 float64, outmask Mask) (Result, error) {
	lon1, err := checkPosition(lat1, lon1)
	if err != nil {
		return Result{}, err
	}
	azi1, err = checkAzimuth(azi1)
	if err != nil {
		return Result{}, err
	}
	if !isfinite(a12) {
		return Result{}, errors.Errorf("arc length %v not a finite number", a12)
	}
	return e.genDirect(lat1, lon1, azi1, true, a12, outmask), nil
}

// genDirect solves the direct problem via a transient line.
func (e *Ellipsoid) genDirect(lat1, lon1, azi1 float64, arcmode bool, s12a12 float64, outmask Mask) Result {
	caps := outmask
	if !arcmode {
		// Automatically supply DistanceIn.
		caps |= DistanceIn
	}
	l := e.newLine(lat1, lon1, azi1, caps)
	return l.genPosition(arcmode, s12a12, outmask)
}
