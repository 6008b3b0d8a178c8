package label

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
)

// Measurement is the length of a freehand polyline.
type Measurement struct {
	Unit     geo.Unit
	Segments []float64
	Total    float64
}

// Text returns the formatted total.
func (m Measurement) Text() string { return m.Unit.Format(m.Total) }

// Measure returns per-segment and total geodesic length of line in unit.
func Measure(line orb.LineString, unit geo.Unit) (Measurement, error) {
	if len(line) < 2 {
		return Measurement{}, fmt.Errorf("%w: measurement needs at least 2 points, got %d",
			domain.ErrInvalidQuery, len(line))
	}
	for _, p := range line {
		if !geo.ValidateCoordinates(p[1], p[0]) {
			return Measurement{}, fmt.Errorf("%w: coordinate %v out of range", domain.ErrInvalidQuery, p)
		}
	}

	m := Measurement{Unit: unit, Segments: make([]float64, 0, len(line)-1)}
	for i := 1; i < len(line); i++ {
		d := unit.FromMeters(geo.Distance(line[i-1], line[i]))
		m.Segments = append(m.Segments, d)
		m.Total += d
	}
	return m, nil
}
