package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
)

const (
	defaultGeometryColumn = "geometry"
	parquetBatchSize      = 1000
)

// geoMetadata is the subset of the GeoParquet "geo" file metadata we use.
type geoMetadata struct {
	PrimaryColumn string `json:"primary_column"`
}

// ReadGeoParquet reads a GeoParquet file. The geometry column holds WKB and is named by the
// file's "geo" metadata (default "geometry"). Every other top-level scalar column becomes a
// feature property.
func ReadGeoParquet(path string) ([]*geojson.Feature, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	geomCol := geometryColumn(pf)
	names := make(map[int]string)
	geomIdx := -1
	for i, col := range pf.Schema().Columns() {
		if len(col) != 1 {
			continue // nested and list columns carry no parcel attributes
		}
		if col[0] == geomCol {
			geomIdx = i
			continue
		}
		names[i] = col[0]
	}
	if geomIdx < 0 {
		return nil, fmt.Errorf("geometry column %q not found", geomCol)
	}

	var features []*geojson.Feature
	for _, rg := range pf.RowGroups() {
		rows := parquet.NewRowGroupReader(rg)
		buf := make([]parquet.Row, parquetBatchSize)
		for {
			n, readErr := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				features = append(features, rowToFeature(buf[i], geomIdx, names))
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return features, nil
}

func geometryColumn(pf *parquet.File) string {
	raw, ok := pf.Lookup("geo")
	if !ok {
		return defaultGeometryColumn
	}
	var meta geoMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil || meta.PrimaryColumn == "" {
		return defaultGeometryColumn
	}
	return meta.PrimaryColumn
}

// rowToFeature decodes one row. Undecodable geometry yields a nil geometry, which the
// loader counts as skipped.
func rowToFeature(row parquet.Row, geomIdx int, names map[int]string) *geojson.Feature {
	var g orb.Geometry
	props := make(map[string]any, len(names))
	for _, v := range row {
		col := v.Column()
		if col == geomIdx {
			if !v.IsNull() {
				if decoded, err := wkb.Unmarshal(v.ByteArray()); err == nil {
					g = decoded
				}
			}
			continue
		}
		name, ok := names[col]
		if !ok || v.IsNull() {
			continue
		}
		props[name] = parquetValue(v)
	}
	f := geojson.NewFeature(g)
	f.Properties = props
	return f
}

func parquetValue(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
