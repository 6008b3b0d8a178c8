package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParcelNotFound signals that no parcel matched a query or key.
	ErrParcelNotFound = errors.New("parcel not found")
	// ErrInvalidQuery signals malformed search or lookup input.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnsupportedGeometry signals a geometry type the operation cannot handle.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	// ErrInvalidSplit signals split parameters that cannot produce two pieces.
	ErrInvalidSplit = errors.New("invalid split")
	// ErrTileNotFound signals a missing MBTiles tile.
	ErrTileNotFound = errors.New("tile not found")
	// ErrTilesDisabled signals that no MBTiles source is configured.
	ErrTilesDisabled = errors.New("tiles disabled")
	// ErrDatasetEmpty signals a dataset that produced no usable parcels.
	ErrDatasetEmpty = errors.New("dataset empty")
)

// SourceError wraps a dataset load failure with the offending path and format.
type SourceError struct {
	Path   string
	Format string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("load %s source %s: %v", e.Format, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError creates a dataset source error.
func NewSourceError(path, format string, err error) error {
	return &SourceError{Path: path, Format: format, Err: err}
}
