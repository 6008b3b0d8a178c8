package dataset

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/dataset"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// Summary describes the loaded dataset.
type Summary struct {
	Count   int
	Bounds  orb.Bound
	Sources []dataset.SourceStats
	Fields  parcel.Fields
}

// Service exposes the whole dataset (the Sheet Map) and its directory.
type Service struct {
	index   Index
	sources []dataset.SourceStats
	fields  parcel.Fields
}

// New creates a dataset service. sources and fields describe how the index was loaded.
func New(index Index, sources []dataset.SourceStats, fields parcel.Fields) *Service {
	return &Service{index: index, sources: sources, fields: fields}
}

// Summary returns counts, extent and load statistics.
func (s *Service) Summary(_ context.Context) Summary {
	return Summary{
		Count:   s.index.Count(),
		Bounds:  s.index.Bound(),
		Sources: s.sources,
		Fields:  s.fields,
	}
}

// All returns every parcel in load order.
func (s *Service) All(ctx context.Context) []*parcel.Parcel {
	return s.index.All(ctx)
}

// Directory returns the VDC to ward listing.
func (s *Service) Directory(ctx context.Context) []parcel.VDCEntry {
	return s.index.Directory(ctx)
}

// Count returns the number of loaded parcels.
func (s *Service) Count() int { return s.index.Count() }
