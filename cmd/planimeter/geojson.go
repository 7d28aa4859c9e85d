package main

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/geodetics/geodesic"
)

// A figure is one measurable unit of a GeoJSON document: a polygon ring
// or a line string.
type figure struct {
	points   []geodesic.LatLon
	polyline bool
}

// measureGeoJSON reads a GeoJSON geometry, Feature, or FeatureCollection
// and reports each polygon ring and line string it contains.  GeoJSON
// coordinates are (lon, lat) ordered.
func measureGeoJSON(e *geodesic.Ellipsoid, in io.Reader, w *bufio.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading geojson input")
	}
	figures, err := decodeFigures(data)
	if err != nil {
		return err
	}
	for _, fig := range figures {
		polyline := fig.polyline || opt.polyline
		poly := e.PolygonInit(polyline)
		for _, pt := range fig.points {
			poly.AddPoint(pt.Lat, pt.Lon)
		}
		count, perimeter, area := poly.Compute(opt.reverse, opt.sign)
		if count == 0 {
			continue
		}
		if err := report(w, count, perimeter, area, polyline); err != nil {
			return err
		}
	}
	return nil
}

func decodeFigures(data []byte) ([]figure, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err == nil {
		return geomFigures(g)
	}
	var feat geojson.Feature
	if err := json.Unmarshal(data, &feat); err == nil && feat.Geometry != nil {
		return geomFigures(feat.Geometry)
	}
	var coll geojson.FeatureCollection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, errors.Wrap(err, "decoding geojson")
	}
	var figures []figure
	for _, f := range coll.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		sub, err := geomFigures(f.Geometry)
		if err != nil {
			return nil, err
		}
		figures = append(figures, sub...)
	}
	return figures, nil
}

func geomFigures(g geom.T) ([]figure, error) {
	switch v := g.(type) {
	case *geom.Polygon:
		figures := make([]figure, 0, v.NumLinearRings())
		for i := 0; i < v.NumLinearRings(); i++ {
			figures = append(figures, figure{points: ringPoints(v.LinearRing(i))})
		}
		return figures, nil
	case *geom.MultiPolygon:
		var figures []figure
		for i := 0; i < v.NumPolygons(); i++ {
			sub, err := geomFigures(v.Polygon(i))
			if err != nil {
				return nil, err
			}
			figures = append(figures, sub...)
		}
		return figures, nil
	case *geom.LineString:
		return []figure{{points: coordPoints(v.Coords()), polyline: true}}, nil
	case *geom.MultiLineString:
		figures := make([]figure, 0, v.NumLineStrings())
		for i := 0; i < v.NumLineStrings(); i++ {
			figures = append(figures, figure{
				points:   coordPoints(v.LineString(i).Coords()),
				polyline: true,
			})
		}
		return figures, nil
	default:
		return nil, errors.Errorf("cannot measure geometry of type %T", g)
	}
}

func ringPoints(r *geom.LinearRing) []geodesic.LatLon {
	pts := coordPoints(r.Coords())
	// GeoJSON rings repeat the first vertex at the end; the polygon
	// closes itself, so drop the duplicate.
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

func coordPoints(coords []geom.Coord) []geodesic.LatLon {
	pts := make([]geodesic.LatLon, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, geodesic.LatLon{Lat: c.Y(), Lon: c.X()})
	}
	return pts
}
