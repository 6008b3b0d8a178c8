package search

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
	"github.com/kailas-cloud/parcelmap/internal/logger"
)

// Result is a set of matched parcels with the extent a map should zoom to.
type Result struct {
	Parcels []*parcel.Parcel
	// Total counts every match, including those cut off by the limit.
	Total  int
	Bounds orb.Bound
}

// Truncated reports whether the limit dropped matches.
func (r Result) Truncated() bool { return r.Total > len(r.Parcels) }

// Service filters the parcel index by VDC/Ward/Parcel or by location.
type Service struct {
	repo        Repository
	maxResults  int
	searchTotal *prometheus.CounterVec
}

// New creates a search service. maxResults caps every result set.
// searchTotal is a counter vec with labels "mode" and "result", may be nil.
func New(repo Repository, maxResults int, searchTotal *prometheus.CounterVec) *Service {
	if maxResults <= 0 || maxResults > query.MaxLimit {
		maxResults = query.MaxLimit
	}
	return &Service{repo: repo, maxResults: maxResults, searchTotal: searchTotal}
}

// Search returns the parcels matching q. No match yields domain.ErrParcelNotFound.
// Bounds and Total always describe the full match set.
func (s *Service) Search(ctx context.Context, q query.Query) (Result, error) {
	parcels, err := s.repo.Search(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("search parcels: %w", err)
	}

	if len(parcels) == 0 {
		s.inc(q, "not_found")
		logger.FromContext(ctx).Debug("no parcel matched",
			zap.String("vdc", q.VDC()), zap.String("ward", q.Ward()),
			zap.String("parcel", q.Parcel()), zap.String("mode", string(q.Mode())))
		return Result{}, fmt.Errorf("no parcel for vdc=%q ward=%q parcel=%q: %w",
			q.VDC(), q.Ward(), q.Parcel(), domain.ErrParcelNotFound)
	}

	s.inc(q, "found")
	return s.result(parcels, q.Limit()), nil
}

// Get returns the first parcel with key k.
func (s *Service) Get(ctx context.Context, k parcel.Key) (*parcel.Parcel, error) {
	p, err := s.repo.Get(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("get parcel: %w", err)
	}
	return p, nil
}

// At returns the parcels whose polygons contain the point.
func (s *Service) At(ctx context.Context, lat, lon float64) (Result, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return Result{}, fmt.Errorf("%w: coordinates lat=%g lon=%g out of range",
			domain.ErrInvalidQuery, lat, lon)
	}

	parcels, err := s.repo.At(ctx, orb.Point{lon, lat})
	if err != nil {
		return Result{}, fmt.Errorf("locate parcel: %w", err)
	}
	if len(parcels) == 0 {
		return Result{}, fmt.Errorf("no parcel at lat=%g lon=%g: %w", lat, lon, domain.ErrParcelNotFound)
	}
	return s.result(parcels, 0), nil
}

func (s *Service) result(parcels []*parcel.Parcel, limit int) Result {
	res := Result{Total: len(parcels), Bounds: Bounds(parcels)}

	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}
	if len(parcels) > limit {
		parcels = parcels[:limit]
	}
	res.Parcels = parcels
	return res
}

func (s *Service) inc(q query.Query, result string) {
	if s.searchTotal != nil {
		s.searchTotal.WithLabelValues(string(q.Mode()), result).Inc()
	}
}

// Bounds returns the union of the parcels' extents. Empty input yields a zero bound.
func Bounds(parcels []*parcel.Parcel) orb.Bound {
	var b orb.Bound
	for i, p := range parcels {
		if i == 0 {
			b = p.Bound()
			continue
		}
		b = b.Union(p.Bound())
	}
	return b
}
