// Package label turns parcel boundaries into generalized, distance-labelled segments.
//
// A ring is walked edge by edge. Consecutive edges are merged while an edge is shorter
// than MinSegment or the turn at its end vertex is flatter than StraightAngle. Each merged
// run becomes one Segment, labelled at its midpoint and rotated along its chord.
package label

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// Options controls generalization and label placement.
type Options struct {
	Unit          geo.Unit
	MinSegment    float64 // in Unit
	StraightAngle float64 // degrees; turns above this are merged
	OffsetFactor  float64 // perpendicular label offset per degree of chord delta
	AllRings      bool    // label every polygon's outer ring, not just the first
}

// DefaultOptions returns the labelling defaults: 5 ft minimum edge, 150 degree merge angle.
func DefaultOptions() Options {
	return Options{
		Unit:          geo.Feet,
		MinSegment:    5,
		StraightAngle: 150,
		OffsetFactor:  0.00005,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Unit != geo.Feet && o.Unit != geo.Meters {
		return fmt.Errorf("unknown unit %q", o.Unit)
	}
	finite := []struct {
		name string
		v    float64
	}{
		{"min_segment", o.MinSegment},
		{"straight_angle", o.StraightAngle},
		{"offset_factor", o.OffsetFactor},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be a finite number, got %g", f.name, f.v)
		}
	}
	if o.MinSegment < 0 {
		return fmt.Errorf("min_segment must be >= 0, got %g", o.MinSegment)
	}
	if o.StraightAngle < 0 || o.StraightAngle > 180 {
		return fmt.Errorf("straight_angle must be between 0 and 180, got %g", o.StraightAngle)
	}
	if o.OffsetFactor < 0 {
		return fmt.Errorf("offset_factor must be >= 0, got %g", o.OffsetFactor)
	}
	return nil
}

// Segment is one generalized run of boundary edges.
type Segment struct {
	start    orb.Point
	end      orb.Point
	distance float64
	unit     geo.Unit
	edges    int
	anchor   orb.Point
	rotation float64
}

// Start returns the first vertex of the run.
func (s Segment) Start() orb.Point { return s.start }

// End returns the last vertex of the run.
func (s Segment) End() orb.Point { return s.end }

// Distance returns the summed edge length in Unit.
func (s Segment) Distance() float64 { return s.distance }

// Unit returns the distance unit.
func (s Segment) Unit() geo.Unit { return s.unit }

// Edges returns how many ring edges were merged into the run.
func (s Segment) Edges() int { return s.edges }

// Anchor returns the label position.
func (s Segment) Anchor() orb.Point { return s.anchor }

// Rotation returns the label rotation in degrees.
func (s Segment) Rotation() float64 { return s.rotation }

// Text returns the label text.
func (s Segment) Text() string { return s.unit.Format(s.distance) }

// Reconstruct creates a Segment without recomputing it (cache hydration).
func Reconstruct(
	start, end orb.Point, distance float64, unit geo.Unit,
	edges int, anchor orb.Point, rotation float64,
) Segment {
	return Segment{
		start:    start,
		end:      end,
		distance: distance,
		unit:     unit,
		edges:    edges,
		anchor:   anchor,
		rotation: rotation,
	}
}

// Engine computes labels directly, without caching.
type Engine struct{}

// Labels labels p with opts.
func (Engine) Labels(_ context.Context, p *parcel.Parcel, opts Options) ([]Segment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return Parcel(p, opts), nil
}

// Generalize labels a single ring. Open rings are closed implicitly.
func Generalize(ring orb.Ring, opts Options) []Segment {
	pts := closed(ring)
	if len(pts) < 2 {
		return nil
	}

	var segments []Segment
	start := pts[0]
	acc := 0.0
	edges := 0

	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		d := opts.Unit.FromMeters(geo.Distance(prev, cur))

		angle := 180.0
		if i < len(pts)-1 {
			angle = geo.TurnAngle(prev, cur, pts[i+1])
		}

		acc += d
		edges++
		if d < opts.MinSegment || angle > opts.StraightAngle {
			continue
		}

		segments = append(segments, newSegment(start, cur, acc, edges, opts))
		start = cur
		acc = 0
		edges = 0
	}

	// closing run back to the first vertex
	if edges > 0 && acc > 0 {
		segments = append(segments, newSegment(start, pts[len(pts)-1], acc, edges, opts))
	}

	return segments
}

// Parcel labels a parcel's outer ring, or every outer ring when opts.AllRings is set.
func Parcel(p *parcel.Parcel, opts Options) []Segment {
	if !opts.AllRings {
		return Generalize(p.OuterRing(), opts)
	}
	var out []Segment
	for _, poly := range p.Polygons() {
		if len(poly) == 0 {
			continue
		}
		out = append(out, Generalize(poly[0], opts)...)
	}
	return out
}

// FeatureCollection renders label anchors as GeoJSON points.
func FeatureCollection(segments []Segment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range segments {
		f := geojson.NewFeature(s.anchor)
		f.Properties["text"] = s.Text()
		f.Properties["distance"] = s.distance
		f.Properties["unit"] = string(s.unit)
		f.Properties["rotation"] = s.rotation
		f.Properties["edges"] = s.edges
		fc.Append(f)
	}
	return fc
}

func newSegment(start, end orb.Point, dist float64, edges int, opts Options) Segment {
	mid := geo.Midpoint(start, end)
	dx, dy := end[0]-start[0], end[1]-start[1]
	anchor := orb.Point{mid[0] - dy*opts.OffsetFactor, mid[1] + dx*opts.OffsetFactor}
	return Segment{
		start:    start,
		end:      end,
		distance: dist,
		unit:     opts.Unit,
		edges:    edges,
		anchor:   anchor,
		rotation: geo.Rotation(start, end),
	}
}

func closed(r orb.Ring) []orb.Point {
	if len(r) == 0 {
		return nil
	}
	pts := []orb.Point(r)
	if !pts[0].Equal(pts[len(pts)-1]) {
		pts = append(append([]orb.Point(nil), pts...), pts[0])
	}
	return pts
}
