package labelcache

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/db"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

type mockLabeler struct {
	segs  []label.Segment
	err   error
	calls int
}

func (m *mockLabeler) Labels(_ context.Context, _ *parcel.Parcel, _ label.Options) ([]label.Segment, error) {
	m.calls++
	return m.segs, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedLabeler(t *testing.T, inner *mockLabeler) (*CachedLabeler, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cl := New(inner, ms, "parcelmap:", time.Hour, nil, zap.NewNop())
	return cl, ms
}

func testParcel(t *testing.T) *parcel.Parcel {
	t.Helper()
	ring := orb.Ring{{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001}, {0, 0}}
	p, err := parcel.New(parcel.Key{VDC: "Bhaktapur", Ward: "3", Parcel: "42"}, orb.Polygon{ring}, nil, "test.geojson")
	if err != nil {
		t.Fatal(err)
	}
	return &p
}
