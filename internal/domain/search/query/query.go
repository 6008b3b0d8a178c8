package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
)

// MaxLimit caps the number of parcels a single search may return.
const MaxLimit = 10000

// Query is a VDC/Ward/Parcel search. Empty fields do not filter.
type Query struct {
	vdc    string
	ward   string
	parcel string
	mode   mode.Mode
	limit  int
}

// New validates and creates a Query. An empty mode means exact; limit 0 means "service default".
func New(vdc, ward, parcelNo string, m mode.Mode, limit int) (Query, error) {
	if m == "" {
		m = mode.Exact
	}
	if !m.IsValid() {
		return Query{}, fmt.Errorf("invalid search mode %q", m)
	}
	if limit < 0 || limit > MaxLimit {
		return Query{}, fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	}
	return Query{
		vdc:    parcel.NormalizeValue(vdc),
		ward:   parcel.NormalizeValue(ward),
		parcel: parcel.NormalizeValue(parcelNo),
		mode:   m,
		limit:  limit,
	}, nil
}

// VDC returns the normalized VDC filter.
func (q Query) VDC() string { return q.vdc }

// Ward returns the normalized ward filter.
func (q Query) Ward() string { return q.ward }

// Parcel returns the normalized parcel number filter.
func (q Query) Parcel() string { return q.parcel }

// Mode returns the match strategy.
func (q Query) Mode() mode.Mode { return q.mode }

// Limit returns the requested result cap (0 = default).
func (q Query) Limit() int { return q.limit }

// IsEmpty reports whether the query filters nothing.
func (q Query) IsEmpty() bool {
	return q.vdc == "" && q.ward == "" && q.parcel == ""
}

// IsExactKey reports whether the query pins a single key in exact mode.
func (q Query) IsExactKey() bool {
	return q.mode == mode.Exact && q.vdc != "" && q.ward != "" && q.parcel != ""
}

// Key returns the query as a key. Only meaningful when IsExactKey is true.
func (q Query) Key() parcel.Key {
	return parcel.Key{VDC: q.vdc, Ward: q.ward, Parcel: q.parcel}
}

// Matches applies the query to a parcel key.
func (q Query) Matches(k parcel.Key) bool {
	return q.matchField(q.vdc, k.VDC) &&
		q.matchField(q.ward, k.Ward) &&
		q.matchField(q.parcel, k.Parcel)
}

func (q Query) matchField(want, got string) bool {
	if want == "" {
		return true
	}
	if q.mode == mode.Fuzzy {
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
	return strings.EqualFold(want, got)
}
