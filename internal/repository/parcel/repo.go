package parcel

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	domparcel "github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
)

// Repo is an immutable in-memory parcel index. Safe for concurrent reads.
type Repo struct {
	parcels   []domparcel.Parcel
	byKey     map[string][]int
	bound     orb.Bound
	directory []domparcel.VDCEntry
}

// New indexes parcels. The slice is owned by the Repo afterwards.
func New(parcels []domparcel.Parcel) *Repo {
	r := &Repo{
		parcels: parcels,
		byKey:   make(map[string][]int, len(parcels)),
	}
	keys := make([]domparcel.Key, 0, len(parcels))
	for i := range parcels {
		k := parcels[i].Key()
		keys = append(keys, k)
		r.byKey[indexKey(k)] = append(r.byKey[indexKey(k)], i)
		if i == 0 {
			r.bound = parcels[i].Bound()
		} else {
			r.bound = r.bound.Union(parcels[i].Bound())
		}
	}
	r.directory = domparcel.BuildDirectory(keys)
	return r
}

// Count returns the number of indexed parcels.
func (r *Repo) Count() int { return len(r.parcels) }

// Bound returns the extent of the whole dataset.
func (r *Repo) Bound() orb.Bound { return r.bound }

// All returns every parcel in load order.
func (r *Repo) All(_ context.Context) []*domparcel.Parcel {
	out := make([]*domparcel.Parcel, len(r.parcels))
	for i := range r.parcels {
		out[i] = &r.parcels[i]
	}
	return out
}

// Search returns every parcel matching q in load order. An empty query matches all parcels.
func (r *Repo) Search(ctx context.Context, q query.Query) ([]*domparcel.Parcel, error) {
	if q.IsExactKey() {
		return r.lookup(q.Key()), nil
	}

	var out []*domparcel.Parcel
	for i := range r.parcels {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("search parcels: %w", err)
			}
		}
		if q.Matches(r.parcels[i].Key()) {
			out = append(out, &r.parcels[i])
		}
	}
	return out, nil
}

// Get returns the first parcel with key k.
func (r *Repo) Get(_ context.Context, k domparcel.Key) (*domparcel.Parcel, error) {
	matches := r.lookup(k)
	if len(matches) == 0 {
		return nil, fmt.Errorf("parcel %s: %w", k, domain.ErrParcelNotFound)
	}
	return matches[0], nil
}

// At returns the parcels containing pt.
func (r *Repo) At(ctx context.Context, pt orb.Point) ([]*domparcel.Parcel, error) {
	if len(r.parcels) == 0 || !r.bound.Contains(pt) {
		return nil, nil
	}
	var out []*domparcel.Parcel
	for i := range r.parcels {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("locate parcel: %w", err)
			}
		}
		if r.parcels[i].Contains(pt) {
			out = append(out, &r.parcels[i])
		}
	}
	return out, nil
}

// Directory returns the VDC to ward listing.
func (r *Repo) Directory(_ context.Context) []domparcel.VDCEntry {
	return r.directory
}

func (r *Repo) lookup(k domparcel.Key) []*domparcel.Parcel {
	idx := r.byKey[indexKey(k)]
	out := make([]*domparcel.Parcel, 0, len(idx))
	for _, i := range idx {
		out = append(out, &r.parcels[i])
	}
	return out
}

func indexKey(k domparcel.Key) string {
	return strings.ToLower(k.VDC) + "\x00" + strings.ToLower(k.Ward) + "\x00" + strings.ToLower(k.Parcel)
}
