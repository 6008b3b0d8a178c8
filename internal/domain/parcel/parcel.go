package parcel

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

// Key is the cadastral lookup triple. Values are normalized (see NormalizeValue).
type Key struct {
	VDC    string
	Ward   string
	Parcel string
}

// NewKey normalizes and validates a fully specified key.
func NewKey(vdc, ward, parcelNo string) (Key, error) {
	k := Key{VDC: NormalizeValue(vdc), Ward: NormalizeValue(ward), Parcel: NormalizeValue(parcelNo)}
	if k.VDC == "" || k.Ward == "" || k.Parcel == "" {
		return Key{}, fmt.Errorf("%w: vdc, ward and parcel are all required", domain.ErrInvalidQuery)
	}
	return k, nil
}

// String renders the key as vdc/ward/parcel.
func (k Key) String() string {
	return k.VDC + "/" + k.Ward + "/" + k.Parcel
}

// Equal compares keys ignoring case.
func (k Key) Equal(o Key) bool {
	return strings.EqualFold(k.VDC, o.VDC) &&
		strings.EqualFold(k.Ward, o.Ward) &&
		strings.EqualFold(k.Parcel, o.Parcel)
}

// Parcel is an immutable cadastral feature.
type Parcel struct {
	key        Key
	geometry   orb.Geometry
	properties map[string]any
	bound      orb.Bound
	source     string
}

// New validates and creates a Parcel. Only Polygon and MultiPolygon geometries are accepted.
func New(key Key, g orb.Geometry, properties map[string]any, source string) (Parcel, error) {
	switch gg := g.(type) {
	case orb.Polygon:
		if len(gg) == 0 || len(gg[0]) < 4 {
			return Parcel{}, fmt.Errorf("%w: polygon needs an outer ring of at least 4 points", domain.ErrUnsupportedGeometry)
		}
	case orb.MultiPolygon:
		if len(gg) == 0 || len(gg[0]) == 0 || len(gg[0][0]) < 4 {
			return Parcel{}, fmt.Errorf("%w: multipolygon needs a polygon with an outer ring", domain.ErrUnsupportedGeometry)
		}
	case nil:
		return Parcel{}, fmt.Errorf("%w: missing geometry", domain.ErrUnsupportedGeometry)
	default:
		return Parcel{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedGeometry, g.GeoJSONType())
	}

	return Parcel{
		key:        key,
		geometry:   g,
		properties: cloneProps(properties),
		bound:      g.Bound(),
		source:     source,
	}, nil
}

// Key returns the lookup triple.
func (p *Parcel) Key() Key { return p.key }

// Geometry returns the polygon or multipolygon.
func (p *Parcel) Geometry() orb.Geometry { return p.geometry }

// Properties returns the original attribute record.
func (p *Parcel) Properties() map[string]any { return p.properties }

// Bound returns the bounding box.
func (p *Parcel) Bound() orb.Bound { return p.bound }

// Source returns the dataset file the parcel was read from.
func (p *Parcel) Source() string { return p.source }

// Polygons returns the parcel as a list of polygons.
func (p *Parcel) Polygons() []orb.Polygon {
	switch g := p.geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return []orb.Polygon(g)
	}
	return nil
}

// OuterRing returns the outer ring of the first polygon.
func (p *Parcel) OuterRing() orb.Ring {
	polys := p.Polygons()
	if len(polys) == 0 || len(polys[0]) == 0 {
		return nil
	}
	return polys[0][0]
}

// AreaSqm returns the geodesic area in square meters.
func (p *Parcel) AreaSqm() float64 {
	return geo.Area(p.geometry)
}

// Contains reports whether pt (lon, lat) lies inside the parcel, holes excluded.
func (p *Parcel) Contains(pt orb.Point) bool {
	if !p.bound.Contains(pt) {
		return false
	}
	for _, poly := range p.Polygons() {
		if planar.PolygonContains(poly, pt) {
			return true
		}
	}
	return false
}

// Feature renders the parcel as a GeoJSON feature identified by its key.
func (p *Parcel) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.geometry)
	for k, v := range p.properties {
		f.Properties[k] = v
	}
	f.ID = p.key.String()
	return f
}

func cloneProps(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
