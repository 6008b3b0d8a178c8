package labelcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/db"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

// store is the consumer interface for the label cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Labeler computes edge labels for a parcel.
type Labeler interface {
	Labels(ctx context.Context, p *parcel.Parcel, opts label.Options) ([]label.Segment, error)
}

// CachedLabeler caches generalized labels in a key-value store.
type CachedLabeler struct {
	inner      Labeler
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Labeler,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedLabeler {
	return &CachedLabeler{
		inner:      inner,
		store:      s,
		prefix:     prefix + "labels:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Labels returns cached labels or computes them with the inner labeler.
// Store failures are logged and fall through to computation.
func (c *CachedLabeler) Labels(ctx context.Context, p *parcel.Parcel, opts label.Options) ([]label.Segment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	key := c.cacheKey(p, opts)

	if segs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return segs, nil
	}

	c.incCache("miss")

	segs, err := c.inner.Labels(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("label parcel: %w", err)
	}

	c.putToCache(ctx, key, segs)
	return segs, nil
}

func (c *CachedLabeler) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey covers the parcel identity, its source and extent (duplicate keys may differ in
// geometry) and every option that changes the output.
func (c *CachedLabeler) cacheKey(p *parcel.Parcel, opts label.Options) string {
	b := p.Bound()
	raw := fmt.Sprintf("%s|%s|%v,%v,%v,%v|%s|%g|%g|%g|%t",
		p.Key(), p.Source(), b.Min[0], b.Min[1], b.Max[0], b.Max[1],
		opts.Unit, opts.MinSegment, opts.StraightAngle, opts.OffsetFactor, opts.AllRings)
	h := sha256.Sum256([]byte(raw))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedLabeler) getFromCache(ctx context.Context, key string) ([]label.Segment, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached labels", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	segs, err := decodeSegments(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached labels", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return segs, true
}

func (c *CachedLabeler) putToCache(ctx context.Context, key string, segs []label.Segment) {
	data, err := encodeSegments(segs)
	if err != nil {
		c.logger.Warn("Failed to encode labels", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache labels", zap.String("key", key), zap.Error(err))
	}
}

func encodeSegments(segs []label.Segment) ([]byte, error) {
	dtos := make([]segmentDTO, len(segs))
	for i, s := range segs {
		dtos[i] = segmentDTO{
			Start:    s.Start(),
			End:      s.End(),
			Distance: s.Distance(),
			Unit:     string(s.Unit()),
			Edges:    s.Edges(),
			Anchor:   s.Anchor(),
			Rotation: s.Rotation(),
		}
	}
	return json.Marshal(dtos)
}

func decodeSegments(data []byte) ([]label.Segment, error) {
	var dtos []segmentDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("invalid label cache data: %w", err)
	}
	segs := make([]label.Segment, len(dtos))
	for i, d := range dtos {
		segs[i] = label.Reconstruct(d.Start, d.End, d.Distance, geoUnit(d.Unit), d.Edges, d.Anchor, d.Rotation)
	}
	return segs, nil
}
