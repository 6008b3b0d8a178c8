// Package dataset reads cadastral source files into parcels.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a source file encoding.
type Format string

const (
	GeoJSON   Format = "geojson"
	KML       Format = "kml"
	KMZ       Format = "kmz"
	Shapefile Format = "shapefile"
	Parquet   Format = "geoparquet"
)

// Source is one configured input file. An empty Format is detected from the extension.
type Source struct {
	Path   string `yaml:"path"`
	Format Format `yaml:"format"`
}

// ParseFormat parses a format name. Common aliases are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geojson", "json":
		return GeoJSON, nil
	case "kml":
		return KML, nil
	case "kmz":
		return KMZ, nil
	case "shapefile", "shp":
		return Shapefile, nil
	case "geoparquet", "parquet":
		return Parquet, nil
	default:
		return "", fmt.Errorf("unknown dataset format %q", s)
	}
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return GeoJSON, nil
	case ".kml":
		return KML, nil
	case ".kmz":
		return KMZ, nil
	case ".shp":
		return Shapefile, nil
	case ".parquet", ".geoparquet":
		return Parquet, nil
	default:
		return "", fmt.Errorf("cannot detect dataset format of %q", path)
	}
}

// Resolve returns the explicit format or the one detected from the path.
func (s Source) Resolve() (Format, error) {
	if s.Format != "" {
		return ParseFormat(string(s.Format))
	}
	return DetectFormat(s.Path)
}
