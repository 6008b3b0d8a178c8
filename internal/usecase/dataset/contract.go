package dataset

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// Index is the read side of the loaded parcel index.
type Index interface {
	Count() int
	Bound() orb.Bound
	All(ctx context.Context) []*parcel.Parcel
	Directory(ctx context.Context) []parcel.VDCEntry
}
