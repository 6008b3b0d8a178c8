package parcel

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	domparcel "github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
)

func mustQuery(t *testing.T, vdc, ward, no string, m mode.Mode) query.Query {
	t.Helper()
	q, err := query.New(vdc, ward, no, m, 0)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestNew_BoundAndCount(t *testing.T) {
	r := newTestRepo(t)
	if r.Count() != 5 {
		t.Errorf("count = %d", r.Count())
	}
	want := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{6, 6}}
	if r.Bound() != want {
		t.Errorf("bound = %v, want %v", r.Bound(), want)
	}
	if len(r.All(context.Background())) != 5 {
		t.Error("All should return every parcel")
	}
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	r := newTestRepo(t)
	got, err := r.Search(context.Background(), mustQuery(t, "", "", "", mode.Exact))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != r.Count() {
		t.Errorf("empty query matched %d of %d", len(got), r.Count())
	}
}

func TestSearch_ExactKeyReturnsDuplicates(t *testing.T) {
	r := newTestRepo(t)
	got, err := r.Search(context.Background(), mustQuery(t, "BHAKTAPUR", "3", "042", mode.Exact))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("want both duplicates, got %d", len(got))
	}
	if got[0].Bound().Min != (orb.Point{0, 0}) {
		t.Errorf("results should keep load order, first is %v", got[0].Bound())
	}
}

func TestSearch_AbsentTriple(t *testing.T) {
	r := newTestRepo(t)
	got, err := r.Search(context.Background(), mustQuery(t, "Bhaktapur", "3", "999", mode.Exact))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("want no matches, got %d", len(got))
	}
}

func TestSearch_PartialAndFuzzy(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	ward3, _ := r.Search(ctx, mustQuery(t, "bhaktapur", "3", "", mode.Exact))
	if len(ward3) != 3 {
		t.Errorf("ward 3 exact: want 3, got %d", len(ward3))
	}

	fuzzy, _ := r.Search(ctx, mustQuery(t, "", "", "42", mode.Fuzzy))
	if len(fuzzy) != 3 {
		t.Errorf("fuzzy 42: want 42, 42 and 420, got %d", len(fuzzy))
	}

	exact, _ := r.Search(ctx, mustQuery(t, "", "", "42", mode.Exact))
	if len(exact) != 2 {
		t.Errorf("exact 42: want 2, got %d", len(exact))
	}
}

func TestSearch_CanceledContext(t *testing.T) {
	r := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Search(ctx, mustQuery(t, "Thimi", "", "", mode.Exact)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p, err := r.Get(ctx, domparcel.Key{VDC: "thimi", Ward: "1", Parcel: "420"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Key().VDC != "Thimi" {
		t.Errorf("got %v", p.Key())
	}

	_, err = r.Get(ctx, domparcel.Key{VDC: "Thimi", Ward: "1", Parcel: "1"})
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Errorf("expected ErrParcelNotFound, got %v", err)
	}
}

func TestAt(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		pt   orb.Point
		want string
	}{
		{"inside first", orb.Point{0.5, 0.5}, "Bhaktapur/3/42"},
		{"inside holed ring", orb.Point{0.1, 1.5}, "Thimi/1/420"},
		{"inside hole", orb.Point{0.5, 1.5}, ""},
		{"outside dataset", orb.Point{50, 50}, ""},
		{"gap between parcels", orb.Point{4, 4}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.At(ctx, tt.pt)
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" {
				if len(got) != 0 {
					t.Errorf("want no parcel, got %v", got[0].Key())
				}
				return
			}
			if len(got) != 1 || got[0].Key().String() != tt.want {
				t.Errorf("want %s, got %d parcels", tt.want, len(got))
			}
		})
	}
}

func TestDirectory(t *testing.T) {
	r := newTestRepo(t)
	dir := r.Directory(context.Background())
	if len(dir) != 2 {
		t.Fatalf("want 2 VDCs, got %d", len(dir))
	}
	if dir[0].VDC != "Bhaktapur" || dir[0].Parcels != 4 {
		t.Errorf("unexpected first entry %+v", dir[0])
	}
	if len(dir[0].Wards) != 2 || dir[0].Wards[0].Ward != "3" {
		t.Errorf("wards = %+v", dir[0].Wards)
	}
}
