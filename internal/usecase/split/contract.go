package split

import (
	"context"

	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// ParcelReader resolves a parcel by key.
type ParcelReader interface {
	Get(ctx context.Context, k parcel.Key) (*parcel.Parcel, error)
}
