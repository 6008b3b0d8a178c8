package dataset

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSON reads a FeatureCollection, or a single Feature, from path.
func ReadGeoJSON(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return decodeGeoJSON(data)
}

func decodeGeoJSON(data []byte) ([]*geojson.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && fc.Type == "FeatureCollection" {
		return fc.Features, nil
	}

	f, ferr := geojson.UnmarshalFeature(data)
	if ferr == nil && f.Type == "Feature" {
		return []*geojson.Feature{f}, nil
	}

	if err == nil {
		err = ferr
	}
	return nil, fmt.Errorf("parse geojson: %w", err)
}
