package measure

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
)

// Service measures freehand polylines.
type Service struct {
	unit geo.Unit
}

// New creates a measure service. unit is used when a request does not name one.
func New(unit geo.Unit) *Service {
	return &Service{unit: unit}
}

// Measure returns per-segment and total geodesic length of line.
func (s *Service) Measure(_ context.Context, line orb.LineString, unit geo.Unit) (label.Measurement, error) {
	if unit == "" {
		unit = s.unit
	}
	m, err := label.Measure(line, unit)
	if err != nil {
		return label.Measurement{}, fmt.Errorf("measure: %w", err)
	}
	return m, nil
}
