package parcel

import (
	"sort"
	"strconv"
	"strings"
)

// WardEntry counts the parcels of one ward.
type WardEntry struct {
	Ward    string
	Parcels int
}

// VDCEntry lists the wards of one VDC.
type VDCEntry struct {
	VDC     string
	Parcels int
	Wards   []WardEntry
}

// BuildDirectory groups keys by VDC and ward. VDCs sort alphabetically ignoring case; wards
// sort numerically when both sides are numbers.
func BuildDirectory(keys []Key) []VDCEntry {
	type vdcAcc struct {
		name    string
		parcels int
		wards   map[string]*WardEntry
	}
	byVDC := make(map[string]*vdcAcc)

	for _, k := range keys {
		vk := strings.ToLower(k.VDC)
		acc, ok := byVDC[vk]
		if !ok {
			acc = &vdcAcc{name: k.VDC, wards: make(map[string]*WardEntry)}
			byVDC[vk] = acc
		}
		acc.parcels++
		wk := strings.ToLower(k.Ward)
		w, ok := acc.wards[wk]
		if !ok {
			w = &WardEntry{Ward: k.Ward}
			acc.wards[wk] = w
		}
		w.Parcels++
	}

	out := make([]VDCEntry, 0, len(byVDC))
	for _, acc := range byVDC {
		e := VDCEntry{VDC: acc.name, Parcels: acc.parcels, Wards: make([]WardEntry, 0, len(acc.wards))}
		for _, w := range acc.wards {
			e.Wards = append(e.Wards, *w)
		}
		sort.Slice(e.Wards, func(i, j int) bool { return NaturalLess(e.Wards[i].Ward, e.Wards[j].Ward) })
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return NaturalLess(out[i].VDC, out[j].VDC) })
	return out
}

// NaturalLess orders numbers numerically, numbers before text, and text case-insensitively.
func NaturalLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
