package parcel

import (
	"testing"

	"github.com/paulmach/orb"

	domparcel "github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func mustParcel(t *testing.T, vdc, ward, no string, g orb.Geometry) domparcel.Parcel {
	t.Helper()
	p, err := domparcel.New(domparcel.Key{VDC: vdc, Ward: ward, Parcel: no}, g, map[string]any{"VDC": vdc}, "test")
	if err != nil {
		t.Fatalf("new parcel: %v", err)
	}
	return p
}

// newTestRepo builds a small dataset:
//
//	Bhaktapur/3/42  square at (0,0)
//	Bhaktapur/3/43  square at (1,0)
//	Bhaktapur/12/7  square at (2,0)
//	Thimi/1/420     square at (0,1) with a hole
//	bhaktapur/3/42  duplicate square at (5,5)
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	holed := square(0, 1, 1)
	holed = append(holed, orb.Ring{{0.25, 1.25}, {0.75, 1.25}, {0.75, 1.75}, {0.25, 1.75}, {0.25, 1.25}})

	return New([]domparcel.Parcel{
		mustParcel(t, "Bhaktapur", "3", "42", square(0, 0, 1)),
		mustParcel(t, "Bhaktapur", "3", "43", square(1, 0, 1)),
		mustParcel(t, "Bhaktapur", "12", "7", square(2, 0, 1)),
		mustParcel(t, "Thimi", "1", "420", holed),
		mustParcel(t, "bhaktapur", "3", "42", square(5, 5, 1)),
	})
}
