package parcelmap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	domparcel "github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
)

// Unit is a display length unit.
type Unit string

// Unit constants.
const (
	Feet   Unit = Unit(geo.Feet)
	Meters Unit = Unit(geo.Meters)
)

// SearchMode controls how query fields are matched.
type SearchMode string

// Search mode constants.
const (
	ModeExact SearchMode = "exact"
	ModeFuzzy SearchMode = "fuzzy"
)

// Direction names the side a split piece is taken from.
type Direction string

// Direction constants.
const (
	North Direction = Direction(split.North)
	South Direction = Direction(split.South)
	East  Direction = Direction(split.East)
	West  Direction = Direction(split.West)
)

// Key identifies a parcel by VDC, ward and parcel number.
type Key struct {
	VDC    string
	Ward   string
	Parcel string
}

// String renders the key as vdc/ward/parcel.
func (k Key) String() string { return k.VDC + "/" + k.Ward + "/" + k.Parcel }

// Parcel is a loaded cadastral feature.
type Parcel struct {
	Key        Key
	Geometry   orb.Geometry
	Properties map[string]any
	Bound      orb.Bound
	AreaSqm    float64
	Source     string
}

// Feature returns the parcel as a GeoJSON feature.
func (p Parcel) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Geometry)
	for k, v := range p.Properties {
		f.Properties[k] = v
	}
	f.ID = p.Key.String()
	return f
}

// Query filters parcels. Empty fields match everything.
type Query struct {
	VDC    string
	Ward   string
	Parcel string
	Mode   SearchMode // default exact
	Limit  int        // 0 = client max
}

// SearchResult holds matching parcels.
type SearchResult struct {
	Parcels   []Parcel
	Total     int
	Bounds    orb.Bound
	Truncated bool
}

// LabelOptions controls edge generalization.
type LabelOptions struct {
	Unit          Unit
	MinSegment    float64
	StraightAngle float64
	OffsetFactor  float64
	AllRings      bool
}

// DefaultLabelOptions returns 5 ft minimum edges merged below a 150 degree turn.
func DefaultLabelOptions() LabelOptions {
	return fromLabelOptions(label.DefaultOptions())
}

// Label is one generalized boundary segment.
type Label struct {
	Start    orb.Point
	End      orb.Point
	Anchor   orb.Point
	Distance float64
	Unit     Unit
	Edges    int
	Rotation float64
	Text     string
}

// SplitResult holds both halves of a split.
type SplitResult struct {
	Piece         orb.MultiPolygon
	Remainder     orb.MultiPolygon
	PieceArea     float64
	RemainderArea float64
	Cut           orb.LineString
	Iterations    int
}

// Measurement is the geodesic length of a polyline.
type Measurement struct {
	Unit     Unit
	Segments []float64
	Total    float64
	Text     string
}

// Ward counts parcels in one ward.
type Ward struct {
	Ward    string
	Parcels int
}

// VDC lists the wards of one VDC.
type VDC struct {
	VDC     string
	Parcels int
	Wards   []Ward
}

func toKey(k domparcel.Key) Key {
	return Key{VDC: k.VDC, Ward: k.Ward, Parcel: k.Parcel}
}

func toParcel(p *domparcel.Parcel) Parcel {
	return Parcel{
		Key:        toKey(p.Key()),
		Geometry:   p.Geometry(),
		Properties: p.Properties(),
		Bound:      p.Bound(),
		AreaSqm:    p.AreaSqm(),
		Source:     p.Source(),
	}
}

func toParcels(ps []*domparcel.Parcel) []Parcel {
	out := make([]Parcel, len(ps))
	for i, p := range ps {
		out[i] = toParcel(p)
	}
	return out
}

func (o LabelOptions) toDomain() label.Options {
	return label.Options{
		Unit:          geo.Unit(o.Unit),
		MinSegment:    o.MinSegment,
		StraightAngle: o.StraightAngle,
		OffsetFactor:  o.OffsetFactor,
		AllRings:      o.AllRings,
	}
}

func fromLabelOptions(o label.Options) LabelOptions {
	return LabelOptions{
		Unit:          Unit(o.Unit),
		MinSegment:    o.MinSegment,
		StraightAngle: o.StraightAngle,
		OffsetFactor:  o.OffsetFactor,
		AllRings:      o.AllRings,
	}
}

func toLabels(segs []label.Segment) []Label {
	out := make([]Label, len(segs))
	for i, s := range segs {
		out[i] = Label{
			Start:    s.Start(),
			End:      s.End(),
			Anchor:   s.Anchor(),
			Distance: s.Distance(),
			Unit:     Unit(s.Unit()),
			Edges:    s.Edges(),
			Rotation: s.Rotation(),
			Text:     s.Text(),
		}
	}
	return out
}

func toSplitResult(r split.Result) SplitResult {
	return SplitResult{
		Piece:         r.Piece(),
		Remainder:     r.Remainder(),
		PieceArea:     r.PieceArea(),
		RemainderArea: r.RemainderArea(),
		Cut:           r.Cut(),
		Iterations:    r.Iterations(),
	}
}

func toDirectory(entries []domparcel.VDCEntry) []VDC {
	out := make([]VDC, len(entries))
	for i, e := range entries {
		wards := make([]Ward, len(e.Wards))
		for j, w := range e.Wards {
			wards[j] = Ward{Ward: w.Ward, Parcels: w.Parcels}
		}
		out[i] = VDC{VDC: e.VDC, Parcels: e.Parcels, Wards: wards}
	}
	return out
}
