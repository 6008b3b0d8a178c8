package search

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
)

// Repository defines the parcel index contract for search operations.
type Repository interface {
	Search(ctx context.Context, q query.Query) ([]*parcel.Parcel, error)
	Get(ctx context.Context, k parcel.Key) (*parcel.Parcel, error)
	At(ctx context.Context, pt orb.Point) ([]*parcel.Parcel, error)
}
