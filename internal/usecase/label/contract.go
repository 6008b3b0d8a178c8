package label

import (
	"context"

	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// ParcelReader resolves a parcel by key.
type ParcelReader interface {
	Get(ctx context.Context, k parcel.Key) (*parcel.Parcel, error)
}

// Labeler computes edge labels (the bare engine or its caching decorator).
type Labeler interface {
	Labels(ctx context.Context, p *parcel.Parcel, opts label.Options) ([]label.Segment, error)
}
