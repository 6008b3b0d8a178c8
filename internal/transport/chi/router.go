package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/metrics"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	APIKeys        []string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter mounts the API routes with the middleware chain.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(RequestIDMiddleware)
	r.Use(WideEventMiddleware(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dataset", s.GetDataset)
		r.Get("/dataset/directory", s.GetDirectory)

		r.Get("/parcels", s.ListParcels)
		r.Get("/parcels/search", s.SearchParcels)
		r.Get("/parcels/at", s.LocateParcel)
		r.Route("/parcels/{vdc}/{ward}/{parcel}", func(r chi.Router) {
			r.Get("/", s.GetParcel)
			r.Get("/labels", s.GetLabels)
			r.Post("/split", s.SplitParcel)
		})

		r.Post("/measure", s.Measure)

		r.Get("/tiles/metadata", s.TileMetadata)
		r.Get("/tiles/{z}/{x}/{y}", s.GetTile)
	})

	return r
}
