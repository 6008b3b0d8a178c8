package dataset

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadShapefile reads polygon records and their DBF attributes from a .shp file.
// Coordinates are taken as WGS84 lon/lat; no reprojection is done.
func ReadShapefile(path string) ([]*geojson.Feature, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer r.Close()

	fields := r.Fields()

	var features []*geojson.Feature
	for r.Next() {
		idx, shape := r.Shape()

		var g orb.Geometry
		if poly, ok := shape.(*shp.Polygon); ok {
			g = shapePolygon(poly.Parts, poly.Points)
		}

		f := geojson.NewFeature(g)
		for i, fld := range fields {
			f.Properties[fld.String()] = strings.TrimSpace(strings.Trim(r.ReadAttribute(int(idx), i), "\x00"))
		}
		features = append(features, f)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	return features, nil
}

// shapePolygon groups shapefile parts into polygons. Clockwise parts are outer rings and
// counter-clockwise parts are holes of the preceding outer ring.
func shapePolygon(parts []int32, points []shp.Point) orb.Geometry {
	var mp orb.MultiPolygon
	for i := range parts {
		start := int(parts[i])
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if start >= end || end > len(points) {
			continue
		}

		ring := make(orb.Ring, 0, end-start)
		for _, pt := range points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}

		if len(mp) == 0 || ring.Orientation() == orb.CW {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		mp[len(mp)-1] = append(mp[len(mp)-1], ring)
	}

	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	default:
		return mp
	}
}
