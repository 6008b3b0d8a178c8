package tiles

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// newTestMBTiles writes an MBTiles file with one tile at XYZ 1/0/0 (TMS row 1).
func newTestMBTiles(t *testing.T, format string, tile []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "base.mbtiles")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = db.Exec(`
CREATE TABLE metadata (name TEXT, value TEXT);
CREATE TABLE tiles (zoom_level INTEGER, tile_column INTEGER, tile_row INTEGER, tile_data BLOB);
`)
	require.NoError(t, err)
	for k, v := range map[string]string{"name": "basemap", "format": format, "minzoom": "0", "maxzoom": "1"} {
		_, err = db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v)
		require.NoError(t, err)
	}
	_, err = db.Exec("INSERT INTO tiles VALUES (1, 0, 1, ?)", tile)
	require.NoError(t, err)
	return path
}

func openTest(t *testing.T, path string) *MBTiles {
	t.Helper()
	m, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() }) //nolint:errcheck
	return m
}

func TestOpen_ReadsMetadata(t *testing.T) {
	m := openTest(t, newTestMBTiles(t, "png", pngHeader))
	meta := m.Metadata()
	assert.Equal(t, "basemap", meta["name"])
	assert.Equal(t, "png", meta["format"])

	meta["name"] = "changed"
	assert.Equal(t, "basemap", m.Metadata()["name"], "Metadata must return a copy")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.mbtiles"))
	assert.Error(t, err)
}

func TestOpen_NotMBTiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE other (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(context.Background(), path)
	assert.Error(t, err)
}

func TestTile_FlipsYToTMS(t *testing.T) {
	m := openTest(t, newTestMBTiles(t, "png", pngHeader))
	ctx := context.Background()

	tile, err := m.Tile(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, tile.Data)
	assert.Equal(t, "image/png", tile.ContentType)
	assert.Empty(t, tile.ContentEncoding)

	_, err = m.Tile(ctx, 1, 0, 1)
	assert.ErrorIs(t, err, domain.ErrTileNotFound)
}

func TestTile_GzippedVector(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("vector tile payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	m := openTest(t, newTestMBTiles(t, "pbf", buf.Bytes()))
	tile, err := m.Tile(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/x-protobuf", tile.ContentType)
	assert.Equal(t, "gzip", tile.ContentEncoding)
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress(0, 0, 0))
	assert.NoError(t, ValidateAddress(3, 7, 7))
	assert.ErrorIs(t, ValidateAddress(-1, 0, 0), domain.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateAddress(31, 0, 0), domain.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateAddress(3, 8, 0), domain.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateAddress(3, 0, -1), domain.ErrInvalidQuery)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentType("jpg", nil))
	assert.Equal(t, "image/webp", contentType("webp", nil))
	assert.Equal(t, "image/png", contentType("", pngHeader))
	assert.Equal(t, "application/x-protobuf", contentType("", []byte{0x1f, 0x8b, 0x08}))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Tile(context.Background(), 0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrTilesDisabled)
	assert.Nil(t, Disabled{}.Metadata())
}

// --- Cache ---

type countingSource struct {
	Source
	calls int
}

func (c *countingSource) Tile(ctx context.Context, z, x, y int) (Tile, error) {
	c.calls++
	return c.Source.Tile(ctx, z, x, y)
}

func TestCache_HitMissNotFound(t *testing.T) {
	src := &countingSource{Source: openTest(t, newTestMBTiles(t, "png", pngHeader))}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_tile_requests_total"}, []string{"result"})
	c := NewCache(src, 16, time.Minute, requests)
	ctx := context.Background()

	for range 3 {
		tile, err := c.Tile(ctx, 1, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, tile.Data)
	}
	_, err := c.Tile(ctx, 1, 1, 1)
	assert.ErrorIs(t, err, domain.ErrTileNotFound)

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(requests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("not_found")))
	assert.Equal(t, "basemap", c.Metadata()["name"])
}

func TestCache_Disabled(t *testing.T) {
	src := &countingSource{Source: openTest(t, newTestMBTiles(t, "png", pngHeader))}
	c := NewCache(src, 0, time.Minute, nil)

	for range 2 {
		_, err := c.Tile(context.Background(), 1, 0, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 0, c.Len())
}
