package parcel

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}
}

func mustKey(t *testing.T, vdc, ward, p string) Key {
	t.Helper()
	k, err := NewKey(vdc, ward, p)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	return k
}

func TestNewKey_Normalizes(t *testing.T) {
	k := mustKey(t, " 12 ", "03", "0045")
	if k.VDC != "12" || k.Ward != "3" || k.Parcel != "45" {
		t.Fatalf("unexpected key %+v", k)
	}
	if k.String() != "12/3/45" {
		t.Errorf("String() = %q", k.String())
	}
}

func TestNewKey_MissingComponent(t *testing.T) {
	_, err := NewKey("12", "", "4")
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestKeyEqual_IgnoresCase(t *testing.T) {
	a := Key{VDC: "Kolvi", Ward: "1", Parcel: "2"}
	b := Key{VDC: "KOLVI", Ward: "1", Parcel: "2"}
	if !a.Equal(b) {
		t.Fatal("expected keys to be equal ignoring case")
	}
}

func TestNew_Polygon(t *testing.T) {
	k := mustKey(t, "1", "2", "3")
	p, err := New(k, square(85, 27, 0.001), map[string]any{"VDC": 1}, "a.geojson")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Key() != k {
		t.Errorf("key mismatch: %+v", p.Key())
	}
	if len(p.Polygons()) != 1 {
		t.Errorf("want 1 polygon, got %d", len(p.Polygons()))
	}
	if len(p.OuterRing()) != 5 {
		t.Errorf("want outer ring of 5 points, got %d", len(p.OuterRing()))
	}
	if p.Source() != "a.geojson" {
		t.Errorf("source = %q", p.Source())
	}
	b := p.Bound()
	if b.Min != (orb.Point{85, 27}) {
		t.Errorf("bound min = %v", b.Min)
	}
}

func TestNew_RejectsUnsupportedGeometry(t *testing.T) {
	k := mustKey(t, "1", "2", "3")
	cases := []orb.Geometry{
		nil,
		orb.Point{1, 2},
		orb.LineString{{0, 0}, {1, 1}},
		orb.Polygon{},
		orb.Polygon{orb.Ring{{0, 0}, {1, 1}, {0, 0}}},
		orb.MultiPolygon{},
	}
	for _, g := range cases {
		if _, err := New(k, g, nil, ""); !errors.Is(err, domain.ErrUnsupportedGeometry) {
			t.Errorf("geometry %#v: expected ErrUnsupportedGeometry, got %v", g, err)
		}
	}
}

func TestNew_ClonesProperties(t *testing.T) {
	props := map[string]any{"VDC": "1"}
	p, err := New(mustKey(t, "1", "1", "1"), square(0, 0, 1), props, "")
	if err != nil {
		t.Fatal(err)
	}
	props["VDC"] = "changed"
	if p.Properties()["VDC"] != "1" {
		t.Fatal("parcel properties must not alias the input map")
	}
}

func TestContains_WithHole(t *testing.T) {
	outer := square(0, 0, 10)[0]
	hole := orb.Ring{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}}
	p, err := New(mustKey(t, "1", "1", "1"), orb.Polygon{outer, hole}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Contains(orb.Point{1, 1}) {
		t.Error("point in outer ring should be contained")
	}
	if p.Contains(orb.Point{5, 5}) {
		t.Error("point in hole should not be contained")
	}
	if p.Contains(orb.Point{20, 20}) {
		t.Error("point outside bound should not be contained")
	}
}

func TestContains_MultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{square(0, 0, 1), square(5, 5, 1)}
	p, err := New(mustKey(t, "1", "1", "1"), mp, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Contains(orb.Point{5.5, 5.5}) {
		t.Error("point in second polygon should be contained")
	}
	if p.Contains(orb.Point{3, 3}) {
		t.Error("point between polygons should not be contained")
	}
}

func TestAreaSqm(t *testing.T) {
	// ~0.001 deg square near the equator is roughly 111m x 111m
	p, err := New(mustKey(t, "1", "1", "1"), square(0, 0, 0.001), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	area := p.AreaSqm()
	if math.Abs(area-12392) > 200 {
		t.Fatalf("unexpected area %f", area)
	}
}

func TestFeature(t *testing.T) {
	p, err := New(mustKey(t, "7", "2", "19"), square(0, 0, 1), map[string]any{"PARCELNO": 19}, "")
	if err != nil {
		t.Fatal(err)
	}
	f := p.Feature()
	if f.ID != "7/2/19" {
		t.Errorf("feature id = %v", f.ID)
	}
	if f.Properties["PARCELNO"] != 19 {
		t.Errorf("feature properties = %v", f.Properties)
	}
	if f.Geometry.GeoJSONType() != "Polygon" {
		t.Errorf("geometry type = %s", f.Geometry.GeoJSONType())
	}
}
