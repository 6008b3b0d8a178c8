package parcelmap

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type source struct {
	path   string
	format string
}

type clientConfig struct {
	sources []source

	vdcFields    []string
	wardFields   []string
	parcelFields []string

	labels        LabelOptions
	maxResults    int
	splitTolerance float64
	splitMaxIter  int

	cacheAddrs    []string
	cachePassword string
	cachePrefix   string
	cacheTTL      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSource adds a dataset file. The format is detected from the extension.
// Sources are merged in the order they are given.
func WithSource(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sources = append(c.sources, source{path: path})
	})
}

// WithSourceFormat adds a dataset file with an explicit format
// ("geojson", "kml", "kmz" or "shapefile").
func WithSourceFormat(path, format string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sources = append(c.sources, source{path: path, format: format})
	})
}

// WithFields overrides the property names tried, in order, for each key field.
// An empty list keeps the defaults for that field.
func WithFields(vdc, ward, parcel []string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vdcFields = vdc
		c.wardFields = ward
		c.parcelFields = parcel
	})
}

// WithLabelDefaults sets the label options returned by DefaultLabels and the unit
// used by Measure when none is given. Default: DefaultLabelOptions().
func WithLabelDefaults(opts LabelOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.labels = opts
	})
}

// WithMaxResults caps the number of parcels a search returns. Default: 10000.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithSplitTolerance sets the split bisection limits.
// Defaults: 0.01 m², 40 iterations.
func WithSplitTolerance(sqm float64, maxIterations int) Option {
	return optionFunc(func(c *clientConfig) {
		c.splitTolerance = sqm
		c.splitMaxIter = maxIterations
	})
}

// WithRedisCache caches edge labels in Redis or Valkey.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithCacheTTL sets the label cache TTL and key prefix.
// Defaults: 24h, "parcelmap:".
func WithCacheTTL(prefix string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cachePrefix = prefix
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
