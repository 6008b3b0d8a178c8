package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
	logpkg "github.com/kailas-cloud/parcelmap/internal/logger"
	"github.com/kailas-cloud/parcelmap/internal/tiles"
	"github.com/kailas-cloud/parcelmap/internal/version"
	datasetuc "github.com/kailas-cloud/parcelmap/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/parcelmap/internal/usecase/health"
	labeluc "github.com/kailas-cloud/parcelmap/internal/usecase/label"
	measureuc "github.com/kailas-cloud/parcelmap/internal/usecase/measure"
	searchuc "github.com/kailas-cloud/parcelmap/internal/usecase/search"
	splituc "github.com/kailas-cloud/parcelmap/internal/usecase/split"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeGeoJSON = "application/geo+json"
	maxBodyBytes       = 1 << 20
)

// TileSource serves base-layer tiles (an MBTiles cache or tiles.Disabled).
type TileSource interface {
	Metadata() map[string]string
	Tile(ctx context.Context, z, x, y int) (tiles.Tile, error)
}

// Services bundles the use cases the HTTP API exposes.
type Services struct {
	Dataset *datasetuc.Service
	Search  *searchuc.Service
	Labels  *labeluc.Service
	Split   *splituc.Service
	Measure *measureuc.Service
	Health  *healthuc.Service
	Tiles   TileSource
}

// Server holds the HTTP handlers of the parcel API.
type Server struct {
	svc           Services
	defaultMode   mode.Mode
	base          *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultMode applies to searches without ?mode=.
func NewServer(svc Services, defaultMode mode.Mode, logger *zap.Logger) *Server {
	if svc.Tiles == nil {
		svc.Tiles = tiles.Disabled{}
	}
	if defaultMode == "" {
		defaultMode = mode.Exact
	}
	return &Server{
		svc:           svc,
		defaultMode:   defaultMode,
		base:          logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// logger returns the per-request logger set by the wide event middleware.
func (s *Server) logger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.base)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report, version.Version))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// GetDataset handles GET /api/v1/dataset.
func (s *Server) GetDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summaryToResponse(s.svc.Dataset.Summary(r.Context())))
}

// GetDirectory handles GET /api/v1/dataset/directory.
func (s *Server) GetDirectory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, directoryToResponse(s.svc.Dataset.Directory(r.Context())))
}

// ListParcels handles GET /api/v1/parcels (the Sheet Map).
func (s *Server) ListParcels(w http.ResponseWriter, r *http.Request) {
	parcels := s.svc.Dataset.All(r.Context())
	writeGeoJSON(w, http.StatusOK, ParcelCollection{
		Type:     typeFeatureCollection,
		Features: parcelFeatures(parcels),
		Bounds:   geo.BoundArray(s.svc.Dataset.Summary(r.Context()).Bounds),
		Total:    len(parcels),
	})
}

// SearchParcels handles GET /api/v1/parcels/search (the Parcel Map).
func (s *Server) SearchParcels(w http.ResponseWriter, r *http.Request) {
	q, err := s.queryFromRequest(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.svc.Search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeGeoJSON(w, http.StatusOK, resultToCollection(res))
}

// LocateParcel handles GET /api/v1/parcels/at.
func (s *Server) LocateParcel(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat", true)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	lon, err := floatParam(r, "lon", true)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.svc.Search.At(r.Context(), lat, lon)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeGeoJSON(w, http.StatusOK, resultToCollection(res))
}

// GetParcel handles GET /api/v1/parcels/{vdc}/{ward}/{parcel}.
func (s *Server) GetParcel(w http.ResponseWriter, r *http.Request) {
	k, err := keyFromPath(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	p, err := s.svc.Search.Get(r.Context(), k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	f := p.Feature()
	f.BBox = geojson.NewBBox(p.Bound())
	writeGeoJSON(w, http.StatusOK, f)
}

// GetLabels handles GET /api/v1/parcels/{vdc}/{ward}/{parcel}/labels.
func (s *Server) GetLabels(w http.ResponseWriter, r *http.Request) {
	k, err := keyFromPath(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	opts, err := labelOptionsFromRequest(r, s.svc.Labels.Defaults())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	segs, err := s.svc.Labels.Labels(r.Context(), k, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeGeoJSON(w, http.StatusOK, label.FeatureCollection(segs))
}

// SplitParcel handles POST /api/v1/parcels/{vdc}/{ward}/{parcel}/split.
func (s *Server) SplitParcel(w http.ResponseWriter, r *http.Request) {
	k, err := keyFromPath(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req SplitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	dir, err := split.ParseDirection(req.Direction)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	p, res, err := s.svc.Split.Split(r.Context(), k, dir, req.AreaSqm)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeGeoJSON(w, http.StatusOK, splitToResponse(p, dir, req.AreaSqm, res))
}

// Measure handles POST /api/v1/measure.
func (s *Server) Measure(w http.ResponseWriter, r *http.Request) {
	var req MeasureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	unit, err := geo.ParseUnit(req.Unit, "")
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
		return
	}

	m, err := s.svc.Measure.Measure(r.Context(), lineFromRequest(req.Coordinates), unit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, measurementToResponse(m))
}

// TileMetadata handles GET /api/v1/tiles/metadata.
func (s *Server) TileMetadata(w http.ResponseWriter, r *http.Request) {
	meta := s.svc.Tiles.Metadata()
	if meta == nil {
		s.handleDomainError(w, r, domain.ErrTilesDisabled)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetTile handles GET /api/v1/tiles/{z}/{x}/{y}. y may carry an extension (7.png).
func (s *Server) GetTile(w http.ResponseWriter, r *http.Request) {
	yParam := chi.URLParam(r, "y")
	yParam = yParam[:len(yParam)-len(path.Ext(yParam))]

	z, errZ := strconv.Atoi(chi.URLParam(r, "z"))
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(yParam)
	if err := errors.Join(errZ, errX, errY); err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: tile address must be integers", domain.ErrInvalidQuery))
		return
	}
	if err := tiles.ValidateAddress(z, x, y); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	t, err := s.svc.Tiles.Tile(r.Context(), z, x, y)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", t.ContentType)
	if t.ContentEncoding != "" {
		w.Header().Set("Content-Encoding", t.ContentEncoding)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(t.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(t.Data)
}

func (s *Server) queryFromRequest(r *http.Request) (query.Query, error) {
	v := r.URL.Query()

	m := mode.Mode(v.Get("mode"))
	if m == "" {
		m = s.defaultMode
	}
	limit := 0
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalidQuery)
		}
		limit = n
	}

	q, err := query.New(firstParam(v, "vdc"), firstParam(v, "wardno", "ward"), firstParam(v, "parcelno", "parcel"), m, limit)
	if err != nil {
		return query.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q, nil
}

func labelOptionsFromRequest(r *http.Request, opts label.Options) (label.Options, error) {
	v := r.URL.Query()

	unit, err := geo.ParseUnit(v.Get("unit"), opts.Unit)
	if err != nil {
		return label.Options{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	opts.Unit = unit

	floats := []struct {
		name string
		dst  *float64
	}{
		{"min_segment", &opts.MinSegment},
		{"straight_angle", &opts.StraightAngle},
		{"offset_factor", &opts.OffsetFactor},
	}
	for _, f := range floats {
		if v.Get(f.name) == "" {
			continue
		}
		n, err := floatParam(r, f.name, false)
		if err != nil {
			return label.Options{}, err
		}
		*f.dst = n
	}

	if raw := v.Get("all_rings"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return label.Options{}, fmt.Errorf("%w: all_rings must be a boolean", domain.ErrInvalidQuery)
		}
		opts.AllRings = b
	}
	return opts, nil
}

func keyFromPath(r *http.Request) (parcel.Key, error) {
	parts := make([]string, 0, 3)
	for _, name := range []string{"vdc", "ward", "parcel"} {
		raw, err := url.PathUnescape(chi.URLParam(r, name))
		if err != nil {
			return parcel.Key{}, fmt.Errorf("%w: malformed %s in path", domain.ErrInvalidQuery, name)
		}
		parts = append(parts, raw)
	}
	return parcel.NewKey(parts[0], parts[1], parts[2])
}

func floatParam(r *http.Request, name string, required bool) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidQuery, name)
		}
		return 0, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidQuery, name)
	}
	return n, nil
}

// firstParam returns the first non-empty value among the given query parameter names.
func firstParam(v url.Values, names ...string) string {
	for _, n := range names {
		if s := v.Get(n); s != "" {
			return s
		}
	}
	return ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeEncoded(w, status, contentTypeJSON, v)
}

func writeGeoJSON(w http.ResponseWriter, status int, v any) {
	writeEncoded(w, status, contentTypeGeoJSON, v)
}

// writeEncoded marshals before committing the status, so an unencodable body
// becomes a 500 instead of an empty 200.
func writeEncoded(w http.ResponseWriter, status int, contentType string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Code: CodeInternalError, Message: "internal error"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
