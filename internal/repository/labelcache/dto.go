package labelcache

import (
	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
)

// segmentDTO is the cached form of a label.Segment.
type segmentDTO struct {
	Start    orb.Point `json:"s"`
	End      orb.Point `json:"e"`
	Distance float64   `json:"d"`
	Unit     string    `json:"u"`
	Edges    int       `json:"n"`
	Anchor   orb.Point `json:"a"`
	Rotation float64   `json:"r"`
}

func geoUnit(s string) geo.Unit {
	if s == string(geo.Meters) {
		return geo.Meters
	}
	return geo.Feet
}
