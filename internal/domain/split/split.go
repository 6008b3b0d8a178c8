// Package split cuts a parcel into two pieces along a cardinal axis.
//
// The cut coordinate is found by bisection: the geometry is clipped to the half-plane on the
// requested side and the cut is moved until the clipped piece has the requested area.
package split

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

const minPieceSqm = 1e-6

// Direction names the side of the parcel the requested piece is taken from.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ParseDirection parses a direction case-insensitively.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case North, South, East, West:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", domain.ErrInvalidSplit, s)
}

// Options bounds the bisection.
type Options struct {
	ToleranceSqm  float64
	MaxIterations int
}

// DefaultOptions returns 0.01 m² tolerance and 40 iterations.
func DefaultOptions() Options {
	return Options{ToleranceSqm: 0.01, MaxIterations: 40}
}

// Result holds both pieces of a split.
type Result struct {
	piece         orb.MultiPolygon
	remainder     orb.MultiPolygon
	pieceArea     float64
	remainderArea float64
	cut           orb.LineString
	iterations    int
}

// Piece returns the part on the requested side.
func (r Result) Piece() orb.MultiPolygon { return r.piece }

// Remainder returns what is left of the parcel.
func (r Result) Remainder() orb.MultiPolygon { return r.remainder }

// PieceArea returns the piece area in square meters.
func (r Result) PieceArea() float64 { return r.pieceArea }

// RemainderArea returns the remainder area in square meters.
func (r Result) RemainderArea() float64 { return r.remainderArea }

// Cut returns the cut line, spanning the parcel bound.
func (r Result) Cut() orb.LineString { return r.cut }

// Iterations returns how many bisection steps were taken.
func (r Result) Iterations() int { return r.iterations }

// Split takes targetSqm square meters from the dir side of g.
func Split(g orb.Geometry, dir Direction, targetSqm float64, opts Options) (Result, error) {
	mp, err := multiPolygon(g)
	if err != nil {
		return Result{}, err
	}
	if _, err := ParseDirection(string(dir)); err != nil {
		return Result{}, err
	}
	if targetSqm <= 0 || math.IsNaN(targetSqm) || math.IsInf(targetSqm, 0) {
		return Result{}, fmt.Errorf("%w: target area must be positive", domain.ErrInvalidSplit)
	}
	total := orbgeo.Area(mp)
	if targetSqm >= total {
		return Result{}, fmt.Errorf("%w: target %.2f m² must be smaller than parcel area %.2f m²",
			domain.ErrInvalidSplit, targetSqm, total)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}

	b := mp.Bound()
	lo, hi := axisRange(b, dir)

	var (
		cut   float64
		piece orb.MultiPolygon
		area  float64
		iter  int
	)
	// t in [0,1] measures how far the cut has moved away from the dir edge
	tLo, tHi := 0.0, 1.0
	for iter = 1; iter <= opts.MaxIterations; iter++ {
		t := (tLo + tHi) / 2
		cut = lo + (hi-lo)*t
		piece = nonEmpty(clip.MultiPolygon(pieceBound(b, dir, cut), mp.Clone()))
		area = orbgeo.Area(piece)
		if math.Abs(area-targetSqm) <= opts.ToleranceSqm {
			break
		}
		if area < targetSqm {
			tLo = t
		} else {
			tHi = t
		}
	}
	if iter > opts.MaxIterations {
		iter = opts.MaxIterations
	}

	remainder := nonEmpty(clip.MultiPolygon(remainderBound(b, dir, cut), mp.Clone()))
	if len(piece) == 0 || len(remainder) == 0 {
		return Result{}, fmt.Errorf("%w: cut did not produce two pieces", domain.ErrInvalidSplit)
	}

	return Result{
		piece:         piece,
		remainder:     remainder,
		pieceArea:     area,
		remainderArea: orbgeo.Area(remainder),
		cut:           cutLine(b, dir, cut),
		iterations:    iter,
	}, nil
}

func multiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch gg := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{gg}, nil
	case orb.MultiPolygon:
		return gg, nil
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", domain.ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// nonEmpty drops slivers left on the clip boundary by polygons outside the bound.
func nonEmpty(mp orb.MultiPolygon) orb.MultiPolygon {
	out := mp[:0]
	for _, p := range mp {
		if orbgeo.Area(p) > minPieceSqm {
			out = append(out, p)
		}
	}
	return out
}

// axisRange returns the dir edge first and the opposite edge second.
func axisRange(b orb.Bound, dir Direction) (float64, float64) {
	switch dir {
	case North:
		return b.Max[1], b.Min[1]
	case South:
		return b.Min[1], b.Max[1]
	case East:
		return b.Max[0], b.Min[0]
	default:
		return b.Min[0], b.Max[0]
	}
}

func pieceBound(b orb.Bound, dir Direction, cut float64) orb.Bound {
	switch dir {
	case North:
		return orb.Bound{Min: orb.Point{b.Min[0], cut}, Max: b.Max}
	case South:
		return orb.Bound{Min: b.Min, Max: orb.Point{b.Max[0], cut}}
	case East:
		return orb.Bound{Min: orb.Point{cut, b.Min[1]}, Max: b.Max}
	default:
		return orb.Bound{Min: b.Min, Max: orb.Point{cut, b.Max[1]}}
	}
}

func remainderBound(b orb.Bound, dir Direction, cut float64) orb.Bound {
	switch dir {
	case North:
		return pieceBound(b, South, cut)
	case South:
		return pieceBound(b, North, cut)
	case East:
		return pieceBound(b, West, cut)
	default:
		return pieceBound(b, East, cut)
	}
}

func cutLine(b orb.Bound, dir Direction, cut float64) orb.LineString {
	if dir == North || dir == South {
		return orb.LineString{{b.Min[0], cut}, {b.Max[0], cut}}
	}
	return orb.LineString{{cut, b.Min[1]}, {cut, b.Max[1]}}
}
