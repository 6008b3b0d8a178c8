package parcelmap

import "github.com/kailas-cloud/parcelmap/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrParcelNotFound      = domain.ErrParcelNotFound
	ErrInvalidQuery        = domain.ErrInvalidQuery
	ErrUnsupportedGeometry = domain.ErrUnsupportedGeometry
	ErrInvalidSplit        = domain.ErrInvalidSplit
	ErrDatasetEmpty        = domain.ErrDatasetEmpty
)
