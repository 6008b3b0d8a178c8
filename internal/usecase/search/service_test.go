package search

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
)

// --- Mocks ---

type mockRepo struct {
	parcels   []*parcel.Parcel
	searchErr error
	getErr    error
	atPoint   orb.Point
	lastQuery query.Query
}

func (m *mockRepo) Search(_ context.Context, q query.Query) ([]*parcel.Parcel, error) {
	m.lastQuery = q
	return m.parcels, m.searchErr
}

func (m *mockRepo) Get(_ context.Context, k parcel.Key) (*parcel.Parcel, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.parcels {
		if p.Key().Equal(k) {
			return p, nil
		}
	}
	return nil, domain.ErrParcelNotFound
}

func (m *mockRepo) At(_ context.Context, pt orb.Point) ([]*parcel.Parcel, error) {
	m.atPoint = pt
	return m.parcels, m.searchErr
}

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func mustParcel(t *testing.T, no string, g orb.Geometry) *parcel.Parcel {
	t.Helper()
	p, err := parcel.New(parcel.Key{VDC: "Bhaktapur", Ward: "3", Parcel: no}, g, nil, "test")
	if err != nil {
		t.Fatalf("new parcel: %v", err)
	}
	return &p
}

func mustQuery(t *testing.T, vdc, ward, no string, limit int) query.Query {
	t.Helper()
	q, err := query.New(vdc, ward, no, mode.Exact, limit)
	if err != nil {
		t.Fatalf("new query: %v", err)
	}
	return q
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_search_total"}, []string{"mode", "result"})
}

// --- Tests ---

func TestSearch_Found(t *testing.T) {
	repo := &mockRepo{parcels: []*parcel.Parcel{
		mustParcel(t, "42", square(0, 0)),
		mustParcel(t, "43", square(2, 3)),
	}}
	counter := newCounter()
	svc := New(repo, 100, counter)

	res, err := svc.Search(context.Background(), mustQuery(t, "Bhaktapur", "3", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Parcels) != 2 {
		t.Fatalf("expected 2 parcels, got total=%d len=%d", res.Total, len(res.Parcels))
	}
	want := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 4}}
	if res.Bounds != want {
		t.Errorf("expected bounds %v, got %v", want, res.Bounds)
	}
	if res.Truncated() {
		t.Error("result should not be truncated")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("exact", "found")); got != 1 {
		t.Errorf("expected found=1, got %v", got)
	}
	if repo.lastQuery.VDC() != "Bhaktapur" {
		t.Errorf("query not passed through: %q", repo.lastQuery.VDC())
	}
}

func TestSearch_NotFound(t *testing.T) {
	counter := newCounter()
	svc := New(&mockRepo{}, 100, counter)

	_, err := svc.Search(context.Background(), mustQuery(t, "Nowhere", "1", "1", 0))
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Fatalf("expected ErrParcelNotFound, got %v", err)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("exact", "not_found")); got != 1 {
		t.Errorf("expected not_found=1, got %v", got)
	}
}

func TestSearch_RepoError(t *testing.T) {
	svc := New(&mockRepo{searchErr: context.Canceled}, 100, nil)

	_, err := svc.Search(context.Background(), mustQuery(t, "", "", "", 0))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSearch_LimitKeepsTotalAndBounds(t *testing.T) {
	repo := &mockRepo{parcels: []*parcel.Parcel{
		mustParcel(t, "1", square(0, 0)),
		mustParcel(t, "2", square(1, 0)),
		mustParcel(t, "3", square(5, 5)),
	}}
	svc := New(repo, 100, nil)

	res, err := svc.Search(context.Background(), mustQuery(t, "", "", "", 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Parcels) != 2 {
		t.Fatalf("expected 2 parcels, got %d", len(res.Parcels))
	}
	if res.Total != 3 || !res.Truncated() {
		t.Errorf("expected total=3 truncated, got total=%d", res.Total)
	}
	if res.Bounds.Max != (orb.Point{6, 6}) {
		t.Errorf("bounds should cover dropped matches, got %v", res.Bounds)
	}
}

func TestSearch_MaxResultsCap(t *testing.T) {
	repo := &mockRepo{parcels: []*parcel.Parcel{
		mustParcel(t, "1", square(0, 0)),
		mustParcel(t, "2", square(1, 0)),
	}}
	svc := New(repo, 1, nil)

	res, err := svc.Search(context.Background(), mustQuery(t, "", "", "", 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Parcels) != 1 {
		t.Errorf("expected service cap of 1, got %d", len(res.Parcels))
	}
}

func TestGet(t *testing.T) {
	repo := &mockRepo{parcels: []*parcel.Parcel{mustParcel(t, "42", square(0, 0))}}
	svc := New(repo, 0, nil)

	p, err := svc.Get(context.Background(), parcel.Key{VDC: "bhaktapur", Ward: "3", Parcel: "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Key().Parcel != "42" {
		t.Errorf("unexpected parcel %s", p.Key())
	}

	_, err = svc.Get(context.Background(), parcel.Key{VDC: "x", Ward: "1", Parcel: "1"})
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Errorf("expected ErrParcelNotFound, got %v", err)
	}
}

func TestAt(t *testing.T) {
	repo := &mockRepo{parcels: []*parcel.Parcel{mustParcel(t, "42", square(85, 27))}}
	svc := New(repo, 0, nil)

	res, err := svc.At(context.Background(), 27.5, 85.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.atPoint != (orb.Point{85.5, 27.5}) {
		t.Errorf("expected lon/lat point, got %v", repo.atPoint)
	}
	if res.Total != 1 {
		t.Errorf("expected 1 parcel, got %d", res.Total)
	}
}

func TestAt_InvalidCoordinates(t *testing.T) {
	svc := New(&mockRepo{}, 0, nil)

	_, err := svc.At(context.Background(), 91, 0)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestAt_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, 0, nil)

	_, err := svc.At(context.Background(), 27.5, 85.5)
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Fatalf("expected ErrParcelNotFound, got %v", err)
	}
}

func TestBounds_Empty(t *testing.T) {
	if b := Bounds(nil); b != (orb.Bound{}) {
		t.Errorf("expected zero bound, got %v", b)
	}
}
