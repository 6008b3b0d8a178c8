package split

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"north", "South", " EAST ", "west"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("ParseDirection(%q): %v", s, err)
		}
	}
	if _, err := ParseDirection("up"); !errors.Is(err, domain.ErrInvalidSplit) {
		t.Errorf("expected ErrInvalidSplit, got %v", err)
	}
}

func TestSplit_AllDirections(t *testing.T) {
	poly := square(85.3, 27.7, 0.001)
	total := orbgeo.Area(poly)
	target := total / 3

	for _, dir := range []Direction{North, South, East, West} {
		t.Run(string(dir), func(t *testing.T) {
			res, err := Split(poly, dir, target, DefaultOptions())
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if math.Abs(res.PieceArea()-target) > 0.01 {
				t.Errorf("piece area %.4f, want %.4f", res.PieceArea(), target)
			}
			if math.Abs(res.PieceArea()+res.RemainderArea()-total) > 0.1 {
				t.Errorf("areas %.4f + %.4f do not add up to %.4f",
					res.PieceArea(), res.RemainderArea(), total)
			}
			if len(res.Cut()) != 2 {
				t.Errorf("cut line has %d points", len(res.Cut()))
			}
		})
	}
}

func TestSplit_PieceOnRequestedSide(t *testing.T) {
	poly := square(0, 0, 0.001)
	res, err := Split(poly, North, orbgeo.Area(poly)/4, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	pb := res.Piece().Bound()
	rb := res.Remainder().Bound()
	if pb.Min[1] < rb.Max[1]-1e-12 {
		t.Errorf("north piece %v should lie above remainder %v", pb, rb)
	}
	if math.Abs(pb.Max[1]-0.001) > 1e-12 {
		t.Errorf("north piece should touch the north edge, got max y %f", pb.Max[1])
	}
}

func TestSplit_MultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{square(0, 0, 0.001), square(0.002, 0, 0.001)}
	total := orbgeo.Area(mp)
	res, err := Split(mp, West, total*0.75, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Remainder()) != 1 {
		t.Errorf("remainder should be part of the eastern square only, got %d polygons", len(res.Remainder()))
	}
	if math.Abs(res.PieceArea()-total*0.75) > 0.01 {
		t.Errorf("piece area %.4f, want %.4f", res.PieceArea(), total*0.75)
	}
}

func TestSplit_InvalidInput(t *testing.T) {
	poly := square(0, 0, 0.001)
	total := orbgeo.Area(poly)

	tests := []struct {
		name   string
		g      orb.Geometry
		dir    Direction
		target float64
		want   error
	}{
		{"zero target", poly, North, 0, domain.ErrInvalidSplit},
		{"negative target", poly, North, -5, domain.ErrInvalidSplit},
		{"target equals area", poly, North, total, domain.ErrInvalidSplit},
		{"target exceeds area", poly, North, total * 2, domain.ErrInvalidSplit},
		{"bad direction", poly, "up", 10, domain.ErrInvalidSplit},
		{"point geometry", orb.Point{1, 1}, North, 10, domain.ErrUnsupportedGeometry},
		{"nil geometry", nil, North, 10, domain.ErrUnsupportedGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.g, tt.dir, tt.target, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSplit_DoesNotMutateInput(t *testing.T) {
	poly := square(0, 0, 0.001)
	before := poly.Clone()
	if _, err := Split(poly, East, orbgeo.Area(poly)/2, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if !poly.Equal(before) {
		t.Errorf("input polygon was modified")
	}
}
