package geodesic

import "math"

// transit returns 1 or -1 if crossing the prime meridian in the east or
// west direction, and 0 otherwise.
func transit(lon1, lon2 float64) int {
	// Compute lon12 the same way as genInverse, with lon12 in (-180, 180]
	// so that a lon12 of -180 counts as an eastward crossing.
	lon1 = angNormalize(lon1)
	lon2 = angNormalize(lon2)
	lon12 := -angNormalize(lon1 - lon2)
	if lon1 < 0 && lon2 >= 0 && lon12 > 0 {
		return 1
	}
	if lon2 < 0 && lon1 >= 0 && lon12 < 0 {
		return -1
	}
	return 0
}

// A Polygon accumulates the perimeter and area of a geodesic polygon, or
// the length of a geodesic polyline, vertex by vertex.  Initialize one
// with Ellipsoid.PolygonInit.
//
// The perimeter and area sums are carried at twice the float64 precision,
// so the result does not degrade with the number of vertices.  At any
// point Compute reports the results so far, and TestPoint and TestEdge
// report what the results would become with one more vertex or edge,
// without committing it.
//
// A Polygon must not be used by more than one goroutine at a time.
type Polygon struct {
	e            *Ellipsoid
	polyline     bool
	area0        float64 // full area of the ellipsoid
	mask         Mask
	num          int
	crossings    int
	perimetersum Accumulator
	areasum      Accumulator
	lat0, lon0   float64 // first vertex
	lat1, lon1   float64 // current vertex
}

// PolygonInit returns a cleared Polygon.  With polyline, the added points
// and edges define a polyline instead and only its length is computed;
// the area is then NaN.
func (e *Ellipsoid) PolygonInit(polyline bool) Polygon {
	p := Polygon{
		e:        e,
		polyline: polyline,
		area0:    e.EllipsoidArea(),
		mask:     Distance,
	}
	if !polyline {
		p.mask |= Area
	}
	p.Clear()
	return p
}

// Clear resets the polygon, allowing a new polygon to be started.
func (p *Polygon) Clear() {
	p.num = 0
	p.crossings = 0
	p.perimetersum.Set(0)
	p.areasum.Set(0)
	p.lat0, p.lon0, p.lat1, p.lon1 = 0, 0, 0, 0
}

// AddPoint adds a vertex to the polygon or polyline.
//
// Param lat is latitude of the vertex (degrees).  It should lie in
// [-90, 90].
// Param lon is longitude of the vertex (degrees).
func (p *Polygon) AddPoint(lat, lon float64) {
	if p.num == 0 {
		p.lat0, p.lon0 = lat, lon
	} else {
		_, s12, _, _, _, _, _, S12 := p.e.genInverse(p.lat1, p.lon1,
			lat, lon, p.mask)
		p.perimetersum.Add(s12)
		if !p.polyline {
			p.areasum.Add(S12)
			p.crossings += transit(p.lon1, lon)
		}
	}
	p.lat1, p.lon1 = lat, lon
	p.num++
}

// AddEdge extends the polygon or polyline by a direct geodesic solve from
// the current vertex.  It does nothing until a first vertex has been
// supplied with AddPoint.
//
// Param azi is azimuth at the current vertex (degrees).
// Param s is the distance to the next vertex (meters).
func (p *Polygon) AddEdge(azi, s float64) {
	if p.num == 0 {
		return
	}
	mask := Latitude | Longitude
	if !p.polyline {
		mask |= Area
	}
	r := p.e.genDirect(p.lat1, p.lon1, azi, false, s, mask)
	p.perimetersum.Add(s)
	if !p.polyline {
		p.areasum.Add(r.Area)
		p.crossings += transit(p.lon1, r.Lon2)
	}
	p.lat1, p.lon1 = r.Lat2, r.Lon2
	p.num++
}

// Compute returns the number of vertices, the perimeter (meters) and, for
// a polygon, the area (meters squared).  The polygon is closed with a
// final geodesic back to the first vertex; there is no need to repeat
// that vertex, and more points can be added afterwards.
//
// Param reverse: count a clockwise traversal as positive area instead of
// a counter-clockwise one.
// Param sign: return a signed area for a polygon traversed in the
// "wrong" direction instead of the (positive) area of its complement.
//
// Arbitrarily complex polygons are allowed.  For a self-intersecting
// polygon the area is accumulated algebraically; the two lobes of a
// figure-8, traversed in opposite senses, partially cancel.  The area of
// a polyline is NaN.
func (p *Polygon) Compute(reverse, sign bool) (count int, perimeter, area float64) {
	area = math.NaN()
	if p.num < 2 {
		if !p.polyline {
			area = 0
		}
		return p.num, 0, area
	}
	if p.polyline {
		return p.num, p.perimetersum.Sum(), area
	}
	_, s12, _, _, _, _, _, S12 := p.e.genInverse(p.lat1, p.lon1,
		p.lat0, p.lon0, p.mask)
	perimeter = p.perimetersum.SumWith(s12)
	tempsum := p.areasum
	tempsum.Add(S12)
	crossings := p.crossings + transit(p.lon1, p.lon0)
	area = p.reduceArea(tempsum, crossings, reverse, sign)
	return p.num, perimeter, area
}

// TestPoint returns the results Compute would give with a tentative final
// vertex at (lat, lon), without changing the accumulated state.  The
// vertex count includes the tentative vertex.
func (p *Polygon) TestPoint(lat, lon float64, reverse, sign bool) (count int, perimeter, area float64) {
	area = math.NaN()
	if p.num == 0 {
		if !p.polyline {
			area = 0
		}
		return 1, 0, area
	}
	perimetersum := p.perimetersum
	tempsum := p.areasum
	crossings := p.crossings

	// Close the figure through the tentative vertex:
	// current -> (lat, lon) -> first.
	_, s12, _, _, _, _, _, S12 := p.e.genInverse(p.lat1, p.lon1,
		lat, lon, p.mask)
	perimetersum.Add(s12)
	if !p.polyline {
		tempsum.Add(S12)
		crossings += transit(p.lon1, lon)
		_, s12, _, _, _, _, _, S12 = p.e.genInverse(lat, lon,
			p.lat0, p.lon0, p.mask)
		perimetersum.Add(s12)
		tempsum.Add(S12)
		crossings += transit(lon, p.lon0)
	}

	perimeter = perimetersum.Sum()
	if p.polyline {
		return p.num + 1, perimeter, area
	}
	area = p.reduceArea(tempsum, crossings, reverse, sign)
	return p.num + 1, perimeter, area
}

// TestEdge returns the results Compute would give with a tentative final
// edge from the current vertex, without changing the accumulated state.
// The count is 0 if no vertex has been added yet, since there is no
// current vertex to extend.
func (p *Polygon) TestEdge(azi, s float64, reverse, sign bool) (count int, perimeter, area float64) {
	if p.num == 0 {
		return 0, 0, math.NaN()
	}
	perimetersum := p.perimetersum
	perimetersum.Add(s)
	if p.polyline {
		return p.num + 1, perimetersum.Sum(), math.NaN()
	}
	tempsum := p.areasum
	crossings := p.crossings

	mask := Latitude | Longitude | Area
	r := p.e.genDirect(p.lat1, p.lon1, azi, false, s, mask)
	tempsum.Add(r.Area)
	crossings += transit(p.lon1, r.Lon2)
	_, s12, _, _, _, _, _, S12 := p.e.genInverse(r.Lat2, r.Lon2,
		p.lat0, p.lon0, p.mask)
	perimetersum.Add(s12)
	tempsum.Add(S12)
	crossings += transit(r.Lon2, p.lon0)

	return p.num + 1, perimetersum.Sum(),
		p.reduceArea(tempsum, crossings, reverse, sign)
}

// reduceArea turns an accumulated sum of geodesic area contributions into
// the area of the closed figure: resolve the prime meridian crossing
// parity, apply the orientation convention, and bring the result into the
// requested range.  The accumulator is taken by value, so callers' state
// is untouched.
func (p *Polygon) reduceArea(areasum Accumulator, crossings int, reverse, sign bool) float64 {
	if crossings&1 != 0 {
		if areasum.Sum() < 0 {
			areasum.Add(+p.area0 / 2)
		} else {
			areasum.Add(-p.area0 / 2)
		}
	}
	// areasum is with the clockwise sense.  If !reverse convert to
	// counter-clockwise convention.
	if !reverse {
		areasum.Negate()
	}
	// If sign put area in (-area0/2, area0/2], else in [0, area0).
	if sign {
		if areasum.Sum() > p.area0/2 {
			areasum.Add(-p.area0)
		} else if areasum.Sum() <= -p.area0/2 {
			areasum.Add(+p.area0)
		}
	} else {
		if areasum.Sum() >= p.area0 {
			areasum.Add(-p.area0)
		} else if areasum.Sum() < 0 {
			areasum.Add(+p.area0)
		}
	}
	return 0 + areasum.Sum()
}

// A LatLon is a position in degrees.
type LatLon struct {
	Lat float64 // latitude (degrees)
	Lon float64 // longitude (degrees)
}

// Area computes the perimeter and area of the polygon with the given
// vertices; a counter-clockwise traversal counts as positive area.  With
// polyline the vertices define a polyline, only its length is computed,
// and the returned area is NaN.
//
// Every vertex is validated before any computation: latitudes must lie
// in [-90, 90] and longitudes in [-180, 360].
func (e *Ellipsoid) Area(points []LatLon, polyline bool) (count int, perimeter, area float64, err error) {
	for _, pt := range points {
		if _, err := checkPosition(pt.Lat, pt.Lon); err != nil {
			return 0, 0, math.NaN(), err
		}
	}
	p := e.PolygonInit(polyline)
	for _, pt := range points {
		p.AddPoint(pt.Lat, pt.Lon)
	}
	count, perimeter, area = p.Compute(false, true)
	return count, perimeter, area, nil
}
