// Package tiles serves raster and vector tiles from an MBTiles file.
package tiles

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

// MaxZoom is the deepest zoom level accepted in tile addresses.
const MaxZoom = 30

// Tile is a single encoded tile ready to be written to a response.
type Tile struct {
	Data            []byte
	ContentType     string
	ContentEncoding string
}

// Source provides tiles and tileset metadata.
type Source interface {
	Metadata() map[string]string
	Tile(ctx context.Context, z, x, y int) (Tile, error)
}

// MBTiles reads an MBTiles 1.3 SQLite file. Tile addresses are XYZ; rows are flipped to TMS.
type MBTiles struct {
	db       *sql.DB
	metadata map[string]string
	format   string
}

// Open opens path read-only and loads its metadata table.
func Open(ctx context.Context, path string) (*MBTiles, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrap(err, "mbtiles: stat")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, eris.Wrap(err, "mbtiles: open")
	}

	meta, err := readMetadata(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MBTiles{db: db, metadata: meta, format: strings.ToLower(meta["format"])}, nil
}

func readMetadata(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name, value FROM metadata")
	if err != nil {
		return nil, eris.Wrap(err, "mbtiles: read metadata")
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, eris.Wrap(err, "mbtiles: scan metadata")
		}
		meta[name] = value
	}
	return meta, eris.Wrap(rows.Err(), "mbtiles: iterate metadata")
}

// Metadata returns a copy of the metadata table.
func (m *MBTiles) Metadata() map[string]string {
	out := make(map[string]string, len(m.metadata))
	for k, v := range m.metadata {
		out[k] = v
	}
	return out
}

// Tile returns the tile at XYZ address z/x/y.
func (m *MBTiles) Tile(ctx context.Context, z, x, y int) (Tile, error) {
	if err := ValidateAddress(z, x, y); err != nil {
		return Tile{}, err
	}
	row := (1 << z) - 1 - y

	var data []byte
	err := m.db.QueryRowContext(ctx,
		"SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?",
		z, x, row,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Tile{}, fmt.Errorf("tile %d/%d/%d: %w", z, x, y, domain.ErrTileNotFound)
	}
	if err != nil {
		return Tile{}, eris.Wrapf(err, "mbtiles: read tile %d/%d/%d", z, x, y)
	}

	return Tile{
		Data:            data,
		ContentType:     contentType(m.format, data),
		ContentEncoding: contentEncoding(data),
	}, nil
}

// Close closes the database.
func (m *MBTiles) Close() error {
	return eris.Wrap(m.db.Close(), "mbtiles: close")
}

// ValidateAddress checks z/x/y against the tile grid.
func ValidateAddress(z, x, y int) error {
	if z < 0 || z > MaxZoom {
		return fmt.Errorf("%w: zoom %d out of range 0..%d", domain.ErrInvalidQuery, z, MaxZoom)
	}
	n := 1 << z
	if x < 0 || x >= n || y < 0 || y >= n {
		return fmt.Errorf("%w: tile %d/%d/%d outside grid", domain.ErrInvalidQuery, z, x, y)
	}
	return nil
}

var gzipMagic = []byte{0x1f, 0x8b}

func contentType(format string, data []byte) string {
	switch format {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "pbf", "mvt":
		return "application/x-protobuf"
	}
	if bytes.HasPrefix(data, gzipMagic) {
		return "application/x-protobuf"
	}
	return http.DetectContentType(data)
}

func contentEncoding(data []byte) string {
	if bytes.HasPrefix(data, gzipMagic) {
		return "gzip"
	}
	return ""
}

// Disabled is the Source used when no MBTiles file is configured.
type Disabled struct{}

// Metadata returns nil.
func (Disabled) Metadata() map[string]string { return nil }

// Tile always fails with ErrTilesDisabled.
func (Disabled) Tile(context.Context, int, int, int) (Tile, error) {
	return Tile{}, domain.ErrTilesDisabled
}
