package chi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/dataset"
	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
	parcelrepo "github.com/kailas-cloud/parcelmap/internal/repository/parcel"
	"github.com/kailas-cloud/parcelmap/internal/tiles"
	datasetuc "github.com/kailas-cloud/parcelmap/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/parcelmap/internal/usecase/health"
	labeluc "github.com/kailas-cloud/parcelmap/internal/usecase/label"
	measureuc "github.com/kailas-cloud/parcelmap/internal/usecase/measure"
	searchuc "github.com/kailas-cloud/parcelmap/internal/usecase/search"
	splituc "github.com/kailas-cloud/parcelmap/internal/usecase/split"
)

// --- Mocks ---

type mockTiles struct {
	meta  map[string]string
	tiles map[string]tiles.Tile
}

func (m *mockTiles) Metadata() map[string]string { return m.meta }

func (m *mockTiles) Tile(_ context.Context, z, x, y int) (tiles.Tile, error) {
	t, ok := m.tiles[fmt.Sprintf("%d/%d/%d", z, x, y)]
	if !ok {
		return tiles.Tile{}, domain.ErrTileNotFound
	}
	return t, nil
}

type mockCache struct{ err error }

func (m *mockCache) Ping(context.Context) error { return m.err }

// --- Fixtures ---

// plot returns a ~100 m square near Bhaktapur with its south-west corner offset by (dx, dy) degrees.
func plot(dx, dy float64) orb.Polygon {
	x, y := 85.43+dx, 27.67+dy
	return orb.Polygon{{{x, y}, {x + 0.001, y}, {x + 0.001, y + 0.001}, {x, y + 0.001}, {x, y}}}
}

func mustParcel(t *testing.T, vdc, ward, no string, g orb.Geometry) parcel.Parcel {
	t.Helper()
	p, err := parcel.New(parcel.Key{VDC: vdc, Ward: ward, Parcel: no}, g,
		map[string]any{"VDC": vdc, "WARDNO": ward, "PARCELNO": no}, "test.geojson")
	if err != nil {
		t.Fatalf("new parcel: %v", err)
	}
	return p
}

type testEnv struct {
	handler http.Handler
	tiles   *mockTiles
}

func newTestEnv(t *testing.T, cfg RouterConfig) *testEnv {
	t.Helper()
	repo := parcelrepo.New([]parcel.Parcel{
		mustParcel(t, "Bhaktapur", "3", "42", plot(0, 0)),
		mustParcel(t, "Bhaktapur", "3", "43", plot(0.001, 0)),
		mustParcel(t, "Thimi", "1", "420", plot(0.01, 0.01)),
	})

	mt := &mockTiles{
		meta: map[string]string{"name": "base", "format": "png"},
		tiles: map[string]tiles.Tile{
			"1/0/1": {Data: []byte("png-bytes"), ContentType: "image/png"},
			"2/1/1": {Data: []byte{0x1f, 0x8b, 0x00}, ContentType: "application/x-protobuf", ContentEncoding: "gzip"},
		},
	}

	stats := []dataset.SourceStats{{Path: "test.geojson", Format: dataset.GeoJSON, Features: 3, Parcels: 3}}
	svc := Services{
		Dataset: datasetuc.New(repo, stats, parcel.DefaultFields()),
		Search:  searchuc.New(repo, 100, nil),
		Labels:  labeluc.New(repo, label.Engine{}, label.DefaultOptions()),
		Split:   splituc.New(repo, split.DefaultOptions(), nil),
		Measure: measureuc.New(geo.Feet),
		Health:  healthuc.New(repo, &mockCache{}),
		Tiles:   mt,
	}
	s := NewServer(svc, mode.Exact, zap.NewNop())
	return &testEnv{handler: NewRouter(s, cfg, zap.NewNop()), tiles: mt}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}
