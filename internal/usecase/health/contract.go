package health

import "context"

// CachePinger checks label cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// DatasetCounter reports how many parcels are loaded.
type DatasetCounter interface {
	Count() int
}
