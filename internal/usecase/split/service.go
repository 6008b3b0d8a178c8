package split

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
	"github.com/kailas-cloud/parcelmap/internal/logger"
)

// Service carves a target area off one side of a parcel.
type Service struct {
	parcels    ParcelReader
	opts       split.Options
	splitTotal *prometheus.CounterVec
}

// New creates a split service. splitTotal has label "result" ("ok"/"invalid"/"error"), may be nil.
func New(parcels ParcelReader, opts split.Options, splitTotal *prometheus.CounterVec) *Service {
	return &Service{parcels: parcels, opts: opts, splitTotal: splitTotal}
}

// Split takes targetSqm square meters from the dir side of the parcel with key k.
func (s *Service) Split(
	ctx context.Context, k parcel.Key, dir split.Direction, targetSqm float64,
) (*parcel.Parcel, split.Result, error) {
	p, err := s.parcels.Get(ctx, k)
	if err != nil {
		return nil, split.Result{}, fmt.Errorf("get parcel: %w", err)
	}

	res, err := split.Split(p.Geometry(), dir, targetSqm, s.opts)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSplit) || errors.Is(err, domain.ErrUnsupportedGeometry) {
			s.inc("invalid")
		} else {
			s.inc("error")
		}
		return nil, split.Result{}, fmt.Errorf("split parcel %s: %w", k, err)
	}

	s.inc("ok")
	logger.FromContext(ctx).Debug("parcel split",
		zap.Stringer("parcel", k),
		zap.String("direction", string(dir)),
		zap.Float64("target_sqm", targetSqm),
		zap.Float64("piece_sqm", res.PieceArea()),
		zap.Int("iterations", res.Iterations()))
	return p, res, nil
}

func (s *Service) inc(result string) {
	if s.splitTotal != nil {
		s.splitTotal.WithLabelValues(result).Inc()
	}
}
