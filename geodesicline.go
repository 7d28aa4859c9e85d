package geodesic

import "math"

// A Line is a geodesic line: a starting point and azimuth on a fixed
// ellipsoid, with the series coefficients for points along the line
// evaluated once at construction.  Use it instead of repeated Direct
// calls when many points along the same geodesic are needed.  A Line is
// immutable and safe for concurrent use.
type Line struct {
	e                *Ellipsoid
	lat1, lon1, azi1 float64
	caps             Mask

	salp1, calp1 float64 // azimuth at point 1
	salp0, calp0 float64 // azimuth at the equator crossing
	ssig1, csig1 float64 // distance from the equator crossing
	somg1, comg1 float64 // longitude from the equator crossing
	stau1, ctau1 float64
	k2           float64

	a1m1, a2m1, a3c, a4 float64
	b11, b21, b31, b41  float64
	c1a                 [nC1 + 1]float64
	c1pa                [nC1p + 1]float64
	c2a                 [nC2 + 1]float64
	c3a                 [nC3]float64
	c4a                 [nC4]float64
}

// Line constructs a geodesic line from point 1 in the direction azi1.
//
// Param lat1 is latitude of point 1 (degrees).  It must lie in [-90, 90].
// Param lon1 is longitude of point 1 (degrees).  It must lie in [-180, 360].
// Param azi1 is azimuth at point 1 (degrees).  It must lie in [-180, 360].
// Param caps selects the capabilities the line carries, i.e., which
// quantities its position queries can return; or in DistanceIn to permit
// queries by distance.  caps == None grants all capabilities.
func (e *Ellipsoid) Line(lat1, lon1, azi1 float64, caps Mask) (*Line, error) {
	lon1, err := checkPosition(lat1, lon1)
	if err != nil {
		return nil, err
	}
	azi1, err = checkAzimuth(azi1)
	if err != nil {
		return nil, err
	}
	if caps == None {
		caps = All
	}
	return e.newLine(lat1, lon1, azi1, caps), nil
}

// newLine is Line without the argument checks, for callers that have
// already validated or canonicalized.
func (e *Ellipsoid) newLine(lat1, lon1, azi1 float64, caps Mask) *Line {
	l := &Line{e: e}
	// Always allow latitude and azimuth.
	l.caps = caps | Latitude | Azimuth

	azi1 = angNormalize(azi1)
	// Guard against underflow in salp0.
	azi1 = angRound(azi1)
	lon1 = angNormalize(lon1)
	l.lat1, l.lon1, l.azi1 = lat1, lon1, azi1
	// alp1 is in [0, pi].  Enforce sin(-180 deg) = 0 and
	// cos(+/-90 deg) = 0 exactly.
	alp1 := azi1 * degree
	l.salp1 = math.Sin(alp1)
	if azi1 == -180 {
		l.salp1 = 0
	}
	l.calp1 = math.Cos(alp1)
	if math.Abs(azi1) == 90 {
		l.calp1 = 0
	}

	phi := lat1 * degree
	// Ensure cbet1 = +epsilon at poles.
	sbet1 := e.f1 * math.Sin(phi)
	cbet1 := math.Cos(phi)
	if math.Abs(lat1) == 90 {
		cbet1 = tiny
	}
	sbet1, cbet1 = sinCosNorm(sbet1, cbet1)

	// Evaluate alp0 from sin(alp1) * cos(bet1) = sin(alp0),
	// alp0 in [0, pi/2 - |bet1|].
	l.salp0 = l.salp1 * cbet1
	// Alt: calp0 = hypot(sbet1, calp1 * cbet1).  The following is
	// slightly better (consider the case salp1 = 0).
	l.calp0 = math.Hypot(l.calp1, l.salp1*sbet1)
	// Evaluate sig with tan(bet1) = tan(sig1) * cos(alp1).
	// sig = 0 is nearest northward crossing of equator.
	// With bet1 = 0, alp1 = pi/2, we have sig1 = 0 (equatorial line).
	// With bet1 =  pi/2, alp1 = -pi, sig1 =  pi/2
	// With bet1 = -pi/2, alp1 =  0 , sig1 = -pi/2
	// Evaluate omg1 with tan(omg1) = sin(alp0) * tan(sig1).
	// With alp0 in (0, pi/2], quadrants for sig and omg coincide.
	// No atan2(0,0) ambiguity at poles since cbet1 = +epsilon.
	// With alp0 = 0, omg1 = 0 for alp1 = 0, omg1 = pi for alp1 = pi.
	l.ssig1 = sbet1
	l.somg1 = l.salp0 * sbet1
	if sbet1 != 0 || l.calp1 != 0 {
		l.csig1 = cbet1 * l.calp1
	} else {
		l.csig1 = 1
	}
	l.comg1 = l.csig1
	// sig1 in (-pi, pi]
	l.ssig1, l.csig1 = sinCosNorm(l.ssig1, l.csig1)
	l.somg1, l.comg1 = sinCosNorm(l.somg1, l.comg1)

	l.k2 = sq(l.calp0) * e.ep2
	eps := l.k2 / (2*(1+math.Sqrt(1+l.k2)) + l.k2)

	if l.caps&capC1 != 0 {
		l.a1m1 = a1m1f(eps)
		l.c1a = c1f(eps)
		l.b11 = sinCosSeries(true, l.ssig1, l.csig1, l.c1a[:])
		s, c := math.Sin(l.b11), math.Cos(l.b11)
		// tau1 = sig1 + B11
		l.stau1 = l.ssig1*c + l.csig1*s
		l.ctau1 = l.csig1*c - l.ssig1*s
		// Not necessary because c1pa reverts c1a
		//   b11 = -sinCosSeries(true, stau1, ctau1, c1pa)
	}
	if l.caps&capC1p != 0 {
		l.c1pa = c1pf(eps)
	}
	if l.caps&capC2 != 0 {
		l.a2m1 = a2m1f(eps)
		l.c2a = c2f(eps)
		l.b21 = sinCosSeries(true, l.ssig1, l.csig1, l.c2a[:])
	}
	if l.caps&capC3 != 0 {
		l.c3a = e.c3f(eps)
		l.a3c = -e.f * l.salp0 * e.a3f(eps)
		l.b31 = sinCosSeries(true, l.ssig1, l.csig1, l.c3a[:])
	}
	if l.caps&capC4 != 0 {
		l.c4a = e.c4f(l.k2)
		// Multiplier = a^2 * e^2 * cos(alpha0) * sin(alpha0)
		l.a4 = sq(e.a) * l.calp0 * l.salp0 * e.e2
		l.b41 = sinCosSeries(false, l.ssig1, l.csig1, l.c4a[:])
	}
	return l
}

// Lat1 returns the latitude of point 1 (degrees).
func (l *Line) Lat1() float64 { return l.lat1 }

// Lon1 returns the longitude of point 1 (degrees).
func (l *Line) Lon1() float64 { return l.lon1 }

// Azi1 returns the azimuth at point 1 (degrees).
func (l *Line) Azi1() float64 { return l.azi1 }

// Caps returns the line's capabilities.
func (l *Line) Caps() Mask { return l.caps }

// Position returns the point at distance s12 (meters) along the line; a
// negative s12 follows the line backwards.  The line must have been
// constructed with the DistanceIn capability, otherwise nothing is
// computed and the Result carries NaN.
//
// Param outmask selects the Result fields to compute, intersected with
// the line's capabilities; ArcLength is always computed.
func (l *Line) Position(s12 float64, outmask Mask) Result {
	return l.genPosition(false, s12, outmask)
}

// ArcPosition returns the point at arc length a12 (degrees) along the
// line; a negative a12 follows the line backwards.  It is available on
// every line regardless of capabilities.
func (l *Line) ArcPosition(a12 float64, outmask Mask) Result {
	return l.genPosition(true, a12, outmask)
}

// genPosition computes the point at s12a12 along the line, an arc length
// (degrees) in arcmode and a distance (meters) otherwise.
func (l *Line) genPosition(arcmode bool, s12a12 float64, outmask Mask) Result {
	var r Result
	r.ArcLength = math.NaN()
	outmask &= l.caps & outAll
	if !(arcmode || l.caps&DistanceIn&outAll != 0) {
		// Impossible distance calculation requested; nothing is
		// computed.
		return r
	}

	e := l.e
	b12, ab1 := 0.0, 0.0
	var sig12, ssig12, csig12 float64
	if arcmode {
		// Interpret s12a12 as spherical arc length.
		sig12 = s12a12 * degree
		s12a := math.Abs(s12a12)
		s12a -= 180 * math.Floor(s12a/180)
		ssig12 = math.Sin(sig12)
		if s12a == 0 {
			ssig12 = 0
		}
		csig12 = math.Cos(sig12)
		if s12a == 90 {
			csig12 = 0
		}
	} else {
		// Interpret s12a12 as distance.
		tau12 := s12a12 / (e.b * (1 + l.a1m1))
		s, c := math.Sin(tau12), math.Cos(tau12)
		// tau2 = tau1 + tau12
		b12 = -sinCosSeries(true, l.stau1*c+l.ctau1*s,
			l.ctau1*c-l.stau1*s, l.c1pa[:])
		sig12 = tau12 - (b12 - l.b11)
		ssig12, csig12 = math.Sin(sig12), math.Cos(sig12)
	}

	// sig2 = sig1 + sig12
	ssig2 := l.ssig1*csig12 + l.csig1*ssig12
	csig2 := l.csig1*csig12 - l.ssig1*ssig12
	if outmask&(Distance|ReducedLength|GeodesicScale) != 0 {
		if arcmode {
			b12 = sinCosSeries(true, ssig2, csig2, l.c1a[:])
		}
		ab1 = (1 + l.a1m1) * (b12 - l.b11)
	}
	// sin(bet2) = cos(alp0) * sin(sig2)
	sbet2 := l.calp0 * ssig2
	// Alt: cbet2 = hypot(csig2, salp0 * ssig2)
	cbet2 := math.Hypot(l.salp0, l.calp0*csig2)
	if cbet2 == 0 {
		// I.e., salp0 = 0, csig2 = 0.  Break the degeneracy in this
		// case.
		cbet2, csig2 = tiny, tiny
	}
	// tan(omg2) = sin(alp0) * tan(sig2)
	somg2, comg2 := l.salp0*ssig2, csig2 // no need to normalize
	// tan(alp0) = cos(sig2) * tan(alp2)
	salp2, calp2 := l.salp0, l.calp0*csig2 // no need to normalize
	// omg12 = omg2 - omg1
	omg12 := math.Atan2(somg2*l.comg1-comg2*l.somg1,
		comg2*l.comg1+somg2*l.somg1)

	r.Computed = outmask
	if outmask&Distance != 0 {
		if arcmode {
			r.Distance = e.b * ((1+l.a1m1)*sig12 + ab1)
		} else {
			r.Distance = s12a12
		}
	}
	if outmask&Longitude != 0 {
		lam12 := omg12 + l.a3c*(sig12+
			(sinCosSeries(true, ssig2, csig2, l.c3a[:])-l.b31))
		lon12 := lam12 / degree
		// Can't use angNormalize because longitude might have wrapped
		// multiple times.
		lon12 = lon12 - 360*math.Floor(lon12/360+0.5)
		r.Lon2 = angNormalize(l.lon1 + lon12)
	}
	if outmask&Latitude != 0 {
		r.Lat2 = math.Atan2(sbet2, e.f1*cbet2) / degree
	}
	if outmask&Azimuth != 0 {
		r.Azi1 = l.azi1
		// The minus signs give the range [-180, 180).  0- converts -0
		// to +0.
		r.Azi2 = 0 - math.Atan2(-salp2, calp2)/degree
	}
	if outmask&(ReducedLength|GeodesicScale) != 0 {
		ssig1sq := sq(l.ssig1)
		ssig2sq := sq(ssig2)
		w1 := math.Sqrt(1 + l.k2*ssig1sq)
		w2 := math.Sqrt(1 + l.k2*ssig2sq)
		b22 := sinCosSeries(true, ssig2, csig2, l.c2a[:])
		ab2 := (1 + l.a2m1) * (b22 - l.b21)
		j12 := (l.a1m1-l.a2m1)*sig12 + (ab1 - ab2)
		if outmask&ReducedLength != 0 {
			// Add parens around (csig1 * ssig2) and (ssig1 * csig2) to
			// ensure accurate cancellation for coincident points.
			r.ReducedLength = e.b * ((w2*(l.csig1*ssig2) -
				w1*(l.ssig1*csig2)) - l.csig1*csig2*j12)
		}
		if outmask&GeodesicScale != 0 {
			r.M12 = csig12 +
				(l.k2*(ssig2sq-ssig1sq)*ssig2/(w1+w2)-csig2*j12)*l.ssig1/w1
			r.M21 = csig12 -
				(l.k2*(ssig2sq-ssig1sq)*l.ssig1/(w1+w2)-l.csig1*j12)*ssig2/w2
		}
	}
	if outmask&Area != 0 {
		b42 := sinCosSeries(false, ssig2, csig2, l.c4a[:])
		var salp12, calp12 float64
		if l.calp0 == 0 || l.salp0 == 0 {
			// alp12 = alp2 - alp1, used in atan2 so no need to
			// normalize.
			salp12 = salp2*l.calp1 - calp2*l.salp1
			calp12 = calp2*l.calp1 + salp2*l.salp1
			// The right thing appears to happen if alp1 = +/-180 and
			// alp2 = 0, viz salp12 = -0 and alp12 = -180.  However this
			// depends on the sign being attached to 0 correctly.  The
			// following ensures the correct behavior.
			if salp12 == 0 && calp12 < 0 {
				salp12 = tiny * l.calp1
				calp12 = -1
			}
		} else {
			// tan(alp) = tan(alp0) * sec(sig)
			// tan(alp2-alp1) = (tan(alp2) - tan(alp1)) /
			//                  (tan(alp2) * tan(alp1) + 1)
			//               = calp0 * salp0 * (csig1 - csig2) /
			//                 (salp0^2 + calp0^2 * csig1 * csig2)
			// If csig12 > 0, write
			//   csig1 - csig2 = ssig12 * (csig1 * ssig12 / (1 + csig12)
			//                             + ssig1)
			// else
			//   csig1 - csig2 = csig1 * (1 - csig12) + ssig12 * ssig1
			// No need to normalize.
			if csig12 <= 0 {
				salp12 = l.calp0 * l.salp0 *
					(l.csig1*(1-csig12) + ssig12*l.ssig1)
			} else {
				salp12 = l.calp0 * l.salp0 * ssig12 *
					(l.csig1*ssig12/(1+csig12) + l.ssig1)
			}
			calp12 = sq(l.salp0) + sq(l.calp0)*l.csig1*csig2
		}
		r.Area = e.c2*math.Atan2(salp12, calp12) + l.a4*(b42-l.b41)
	}

	if arcmode {
		r.ArcLength = s12a12
	} else {
		r.ArcLength = sig12 / degree
	}
	return r
}
