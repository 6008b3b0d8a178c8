package label

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// Service labels parcel edges with their generalized lengths.
type Service struct {
	parcels  ParcelReader
	labeler  Labeler
	defaults label.Options
}

// New creates a label service. defaults seed every request's options.
func New(parcels ParcelReader, labeler Labeler, defaults label.Options) *Service {
	return &Service{parcels: parcels, labeler: labeler, defaults: defaults}
}

// Defaults returns the configured label options.
func (s *Service) Defaults() label.Options { return s.defaults }

// Labels generalizes the boundary of the parcel with key k.
func (s *Service) Labels(ctx context.Context, k parcel.Key, opts label.Options) ([]label.Segment, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	p, err := s.parcels.Get(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("get parcel: %w", err)
	}

	segs, err := s.labeler.Labels(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("label parcel %s: %w", k, err)
	}
	return segs, nil
}
