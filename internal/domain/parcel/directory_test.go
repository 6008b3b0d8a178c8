package parcel

import "testing"

func TestBuildDirectory(t *testing.T) {
	keys := []Key{
		{VDC: "Thimi", Ward: "10", Parcel: "1"},
		{VDC: "Bhaktapur", Ward: "3", Parcel: "42"},
		{VDC: "Thimi", Ward: "2", Parcel: "7"},
		{VDC: "thimi", Ward: "2", Parcel: "8"},
		{VDC: "Bhaktapur", Ward: "3", Parcel: "42"},
	}
	dir := BuildDirectory(keys)
	if len(dir) != 2 {
		t.Fatalf("want 2 VDCs, got %d", len(dir))
	}
	if dir[0].VDC != "Bhaktapur" || dir[0].Parcels != 2 {
		t.Errorf("first entry = %+v", dir[0])
	}
	thimi := dir[1]
	if thimi.Parcels != 3 {
		t.Errorf("Thimi parcels = %d, want 3", thimi.Parcels)
	}
	if len(thimi.Wards) != 2 || thimi.Wards[0].Ward != "2" || thimi.Wards[1].Ward != "10" {
		t.Errorf("wards should sort numerically, got %+v", thimi.Wards)
	}
	if thimi.Wards[0].Parcels != 2 {
		t.Errorf("ward 2 parcels = %d, want 2", thimi.Wards[0].Parcels)
	}
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"9", "A", true},
		{"A", "9", false},
		{"apple", "Banana", true},
		{"B", "b", true},
	}
	for _, tt := range tests {
		if got := NaturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("NaturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
