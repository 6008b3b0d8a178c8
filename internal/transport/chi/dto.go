package chi

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
	datasetuc "github.com/kailas-cloud/parcelmap/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/parcelmap/internal/usecase/health"
	searchuc "github.com/kailas-cloud/parcelmap/internal/usecase/search"
)

const typeFeatureCollection = "FeatureCollection"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Parcels int               `json:"parcels"`
	Version string            `json:"version"`
}

// SourceResponse describes one loaded dataset file.
type SourceResponse struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Features int    `json:"features"`
	Parcels  int    `json:"parcels"`
	Skipped  int    `json:"skipped"`
}

// FieldsResponse lists the property aliases used to read parcel keys.
type FieldsResponse struct {
	VDC    []string `json:"vdc"`
	Ward   []string `json:"ward"`
	Parcel []string `json:"parcel"`
}

// DatasetResponse is the body of GET /api/v1/dataset.
type DatasetResponse struct {
	Count   int              `json:"count"`
	Bounds  [4]float64       `json:"bounds"`
	Sources []SourceResponse `json:"sources"`
	Fields  FieldsResponse   `json:"fields"`
}

// WardResponse is one ward of a directory entry.
type WardResponse struct {
	Ward    string `json:"ward"`
	Parcels int    `json:"parcels"`
}

// VDCResponse is one directory entry.
type VDCResponse struct {
	VDC     string         `json:"vdc"`
	Parcels int            `json:"parcels"`
	Wards   []WardResponse `json:"wards"`
}

// DirectoryResponse is the body of GET /api/v1/dataset/directory.
type DirectoryResponse struct {
	VDCs []VDCResponse `json:"vdcs"`
}

// ParcelCollection is a GeoJSON FeatureCollection with result metadata as foreign members.
type ParcelCollection struct {
	Type      string             `json:"type"`
	Features  []*geojson.Feature `json:"features"`
	Bounds    [4]float64         `json:"bounds"`
	Total     int                `json:"total"`
	Truncated bool               `json:"truncated"`
}

// SplitRequest is the body of POST .../split.
type SplitRequest struct {
	Direction string  `json:"direction"`
	AreaSqm   float64 `json:"area_sqm"`
}

// SplitResponse is a FeatureCollection of the piece, the remainder and the cut line.
type SplitResponse struct {
	Type             string             `json:"type"`
	Features         []*geojson.Feature `json:"features"`
	Parcel           string             `json:"parcel"`
	Direction        string             `json:"direction"`
	TargetSqm        float64            `json:"target_sqm"`
	PieceAreaSqm     float64            `json:"piece_area_sqm"`
	RemainderAreaSqm float64            `json:"remainder_area_sqm"`
	Iterations       int                `json:"iterations"`
}

// MeasureRequest is the body of POST /api/v1/measure.
type MeasureRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Unit        string       `json:"unit"`
}

// MeasureResponse is the body of a measurement.
type MeasureResponse struct {
	Unit     string    `json:"unit"`
	Segments []float64 `json:"segments"`
	Total    float64   `json:"total"`
	Text     string    `json:"text"`
}

func healthToResponse(r healthuc.Report, ver string) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks, Parcels: r.Parcels, Version: ver}
}

func summaryToResponse(s datasetuc.Summary) DatasetResponse {
	sources := make([]SourceResponse, len(s.Sources))
	for i, src := range s.Sources {
		sources[i] = SourceResponse{
			Path:     src.Path,
			Format:   string(src.Format),
			Features: src.Features,
			Parcels:  src.Parcels,
			Skipped:  src.Skipped,
		}
	}
	return DatasetResponse{
		Count:   s.Count,
		Bounds:  geo.BoundArray(s.Bounds),
		Sources: sources,
		Fields:  FieldsResponse{VDC: s.Fields.VDC, Ward: s.Fields.Ward, Parcel: s.Fields.Parcel},
	}
}

func directoryToResponse(entries []parcel.VDCEntry) DirectoryResponse {
	vdcs := make([]VDCResponse, len(entries))
	for i, e := range entries {
		wards := make([]WardResponse, len(e.Wards))
		for j, w := range e.Wards {
			wards[j] = WardResponse{Ward: w.Ward, Parcels: w.Parcels}
		}
		vdcs[i] = VDCResponse{VDC: e.VDC, Parcels: e.Parcels, Wards: wards}
	}
	return DirectoryResponse{VDCs: vdcs}
}

func parcelFeatures(parcels []*parcel.Parcel) []*geojson.Feature {
	features := make([]*geojson.Feature, len(parcels))
	for i, p := range parcels {
		features[i] = p.Feature()
	}
	return features
}

func resultToCollection(res searchuc.Result) ParcelCollection {
	return ParcelCollection{
		Type:      typeFeatureCollection,
		Features:  parcelFeatures(res.Parcels),
		Bounds:    geo.BoundArray(res.Bounds),
		Total:     res.Total,
		Truncated: res.Truncated(),
	}
}

func splitToResponse(p *parcel.Parcel, dir split.Direction, target float64, res split.Result) SplitResponse {
	piece := geojson.NewFeature(res.Piece())
	piece.Properties["role"] = "piece"
	piece.Properties["area_sqm"] = res.PieceArea()

	remainder := geojson.NewFeature(res.Remainder())
	remainder.Properties["role"] = "remainder"
	remainder.Properties["area_sqm"] = res.RemainderArea()

	cut := geojson.NewFeature(res.Cut())
	cut.Properties["role"] = "cut"

	return SplitResponse{
		Type:             typeFeatureCollection,
		Features:         []*geojson.Feature{piece, remainder, cut},
		Parcel:           p.Key().String(),
		Direction:        string(dir),
		TargetSqm:        target,
		PieceAreaSqm:     res.PieceArea(),
		RemainderAreaSqm: res.RemainderArea(),
		Iterations:       res.Iterations(),
	}
}

func measurementToResponse(m label.Measurement) MeasureResponse {
	return MeasureResponse{Unit: string(m.Unit), Segments: m.Segments, Total: m.Total, Text: m.Text()}
}

func lineFromRequest(coords [][2]float64) orb.LineString {
	line := make(orb.LineString, len(coords))
	for i, c := range coords {
		line[i] = orb.Point{c[0], c[1]}
	}
	return line
}
