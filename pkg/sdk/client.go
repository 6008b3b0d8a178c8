package parcelmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/dataset"
	dbRedis "github.com/kailas-cloud/parcelmap/internal/db/redis"
	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	domparcel "github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/query"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
	"github.com/kailas-cloud/parcelmap/internal/repository/labelcache"
	parcelrepo "github.com/kailas-cloud/parcelmap/internal/repository/parcel"
	datasetuc "github.com/kailas-cloud/parcelmap/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/parcelmap/internal/usecase/health"
	labeluc "github.com/kailas-cloud/parcelmap/internal/usecase/label"
	measureuc "github.com/kailas-cloud/parcelmap/internal/usecase/measure"
	searchuc "github.com/kailas-cloud/parcelmap/internal/usecase/search"
	splituc "github.com/kailas-cloud/parcelmap/internal/usecase/split"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCachePrefix      = "parcelmap:"
	defaultCacheTTL         = 24 * time.Hour
)

// Internal interfaces so tests can swap use cases.
type searchUseCase interface {
	Search(ctx context.Context, q query.Query) (searchuc.Result, error)
	Get(ctx context.Context, k domparcel.Key) (*domparcel.Parcel, error)
	At(ctx context.Context, lat, lon float64) (searchuc.Result, error)
}

type labelUseCase interface {
	Labels(ctx context.Context, k domparcel.Key, opts label.Options) ([]label.Segment, error)
}

type splitUseCase interface {
	Split(ctx context.Context, k domparcel.Key, dir split.Direction, targetSqm float64) (*domparcel.Parcel, split.Result, error)
}

type measureUseCase interface {
	Measure(ctx context.Context, line orb.LineString, unit geo.Unit) (label.Measurement, error)
}

type datasetUseCase interface {
	Directory(ctx context.Context) []domparcel.VDCEntry
	Count() int
}

// Client is the parcelmap SDK entry point. It is safe for concurrent use;
// the loaded dataset never changes after Open returns.
type Client struct {
	store      *dbRedis.Store
	searchSvc  searchUseCase
	labelSvc   labelUseCase
	splitSvc   splitUseCase
	measureSvc measureUseCase
	datasetSvc datasetUseCase
	healthSvc  healthUseCase
	labels     LabelOptions
	obs        *observer
}

// Open loads every configured source and returns a ready Client.
// The provided context bounds dataset loading and the cache readiness check.
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		labels:      DefaultLabelOptions(),
		maxResults:  query.MaxLimit,
		cachePrefix: defaultCachePrefix,
		cacheTTL:    defaultCacheTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.sources) == 0 {
		return nil, errors.New("parcelmap: at least one source required (use WithSource)")
	}
	if err := cfg.labels.toDomain().Validate(); err != nil {
		return nil, fmt.Errorf("parcelmap: label options: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	fields := domparcel.Fields{
		VDC:    cfg.vdcFields,
		Ward:   cfg.wardFields,
		Parcel: cfg.parcelFields,
	}.WithDefaults()

	sources := make([]dataset.Source, len(cfg.sources))
	for i, s := range cfg.sources {
		sources[i] = dataset.Source{Path: s.path, Format: dataset.Format(s.format)}
	}

	start := time.Now()
	ds, err := dataset.NewLoader(fields, zap.NewNop()).Load(ctx, sources)
	obs.observe("open", start, err)
	if err != nil {
		return nil, fmt.Errorf("parcelmap: load dataset: %w", err)
	}
	obs.loaded(len(ds.Parcels))

	var store *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		store, err = createStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	return wireClient(ds, fields, store, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (*dbRedis.Store, error) {
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.cacheAddrs,
		Password: cfg.cachePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("parcelmap: create cache store: %w", err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("parcelmap: cache not ready: %w", err)
	}
	return s, nil
}

func wireClient(ds *dataset.Dataset, fields domparcel.Fields, store *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	repo := parcelrepo.New(ds.Parcels)

	var labeler labeluc.Labeler = label.Engine{}
	var cache healthuc.CachePinger
	if store != nil {
		labeler = labelcache.New(label.Engine{}, store, cfg.cachePrefix, cfg.cacheTTL, nil, zap.NewNop())
		cache = store
	}

	splitOpts := split.DefaultOptions()
	if cfg.splitTolerance > 0 {
		splitOpts.ToleranceSqm = cfg.splitTolerance
	}
	if cfg.splitMaxIter > 0 {
		splitOpts.MaxIterations = cfg.splitMaxIter
	}

	return &Client{
		store:      store,
		searchSvc:  searchuc.New(repo, cfg.maxResults, nil),
		labelSvc:   labeluc.New(repo, labeler, cfg.labels.toDomain()),
		splitSvc:   splituc.New(repo, splitOpts, nil),
		measureSvc: measureuc.New(geo.Unit(cfg.labels.Unit)),
		datasetSvc: datasetuc.New(repo, ds.Sources, fields),
		healthSvc:  healthuc.New(repo, cache),
		labels:     cfg.labels,
		obs:        obs,
	}
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Count returns the number of loaded parcels.
func (c *Client) Count() int { return c.datasetSvc.Count() }

// Search returns parcels matching q. An empty match yields ErrParcelNotFound.
func (c *Client) Search(ctx context.Context, q Query) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	dq, err := query.New(q.VDC, q.Ward, q.Parcel, mode.Mode(q.Mode), q.Limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	r, err := c.searchSvc.Search(ctx, dq)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return toSearchResult(r), nil
}

// Get returns the parcel with exactly this key.
func (c *Client) Get(ctx context.Context, k Key) (p Parcel, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	dk, err := domparcel.NewKey(k.VDC, k.Ward, k.Parcel)
	if err != nil {
		return Parcel{}, err
	}
	dp, err := c.searchSvc.Get(ctx, dk)
	if err != nil {
		return Parcel{}, fmt.Errorf("get %s: %w", dk, err)
	}
	return toParcel(dp), nil
}

// At returns the parcels containing the given location.
func (c *Client) At(ctx context.Context, lat, lon float64) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("at", start, err) }()

	r, err := c.searchSvc.At(ctx, lat, lon)
	if err != nil {
		return SearchResult{}, fmt.Errorf("locate: %w", err)
	}
	return toSearchResult(r), nil
}

// Labels returns generalized edge labels for the parcel with key k.
//
// A zero LabelOptions{} uses the client defaults (see WithLabelDefaults). Otherwise the
// options are taken as given, so a zero MinSegment, StraightAngle or OffsetFactor is a
// real zero; only an empty Unit falls back to the client default. Start from
// DefaultLabels to override a single field.
func (c *Client) Labels(ctx context.Context, k Key, opts LabelOptions) (labels []Label, err error) {
	start := time.Now()
	defer func() { c.obs.observe("labels", start, err) }()

	dk, err := domparcel.NewKey(k.VDC, k.Ward, k.Parcel)
	if err != nil {
		return nil, err
	}
	if opts == (LabelOptions{}) {
		opts = c.labels
	}
	lo := opts.toDomain()
	if lo.Unit, err = geo.ParseUnit(string(opts.Unit), geo.Unit(c.labels.Unit)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	segs, err := c.labelSvc.Labels(ctx, dk, lo)
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", dk, err)
	}
	return toLabels(segs), nil
}

// DefaultLabels returns the label options the client was opened with.
func (c *Client) DefaultLabels() LabelOptions { return c.labels }

// Split cuts a piece of targetSqm square meters from the dir side of the parcel.
func (c *Client) Split(ctx context.Context, k Key, dir Direction, targetSqm float64) (res SplitResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("split", start, err) }()

	dk, err := domparcel.NewKey(k.VDC, k.Ward, k.Parcel)
	if err != nil {
		return SplitResult{}, err
	}
	d, err := split.ParseDirection(string(dir))
	if err != nil {
		return SplitResult{}, err
	}
	_, r, err := c.splitSvc.Split(ctx, dk, d, targetSqm)
	if err != nil {
		return SplitResult{}, fmt.Errorf("split %s: %w", dk, err)
	}
	return toSplitResult(r), nil
}

// Measure returns the geodesic length of line. An empty unit uses the label default.
func (c *Client) Measure(ctx context.Context, line orb.LineString, unit Unit) (m Measurement, err error) {
	start := time.Now()
	defer func() { c.obs.observe("measure", start, err) }()

	u, err := geo.ParseUnit(string(unit), geo.Unit(c.labels.Unit))
	if err != nil {
		return Measurement{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	r, err := c.measureSvc.Measure(ctx, line, u)
	if err != nil {
		return Measurement{}, fmt.Errorf("measure: %w", err)
	}
	return Measurement{
		Unit:     Unit(r.Unit),
		Segments: r.Segments,
		Total:    r.Total,
		Text:     r.Text(),
	}, nil
}

// Directory lists VDCs and their wards with parcel counts.
func (c *Client) Directory(ctx context.Context) []VDC {
	return toDirectory(c.datasetSvc.Directory(ctx))
}

func toSearchResult(r searchuc.Result) SearchResult {
	return SearchResult{
		Parcels:   toParcels(r.Parcels),
		Total:     r.Total,
		Bounds:    r.Bounds,
		Truncated: r.Truncated(),
	}
}
