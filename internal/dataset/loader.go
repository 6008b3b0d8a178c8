package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/parcelmap/internal/domain"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
)

const maxConcurrentSources = 4

// ReadFunc decodes a source file into raw features.
type ReadFunc func(path string) ([]*geojson.Feature, error)

// SourceStats summarizes one loaded source.
type SourceStats struct {
	Path     string
	Format   Format
	Features int
	Parcels  int
	Skipped  int
}

// Dataset is the merged result of loading every configured source.
type Dataset struct {
	Parcels []parcel.Parcel
	Sources []SourceStats
}

// Loader reads sources concurrently and converts features to parcels.
type Loader struct {
	fields  parcel.Fields
	readers map[Format]ReadFunc
	logger  *zap.Logger
}

// NewLoader creates a Loader using fields to resolve parcel keys.
func NewLoader(fields parcel.Fields, logger *zap.Logger) *Loader {
	return &Loader{
		fields: fields.WithDefaults(),
		readers: map[Format]ReadFunc{
			GeoJSON:   ReadGeoJSON,
			KML:       ReadKML,
			KMZ:       ReadKMZ,
			Shapefile: ReadShapefile,
			Parquet:   ReadGeoParquet,
		},
		logger: logger,
	}
}

// Load reads all sources and merges their parcels in source order.
// Features without a full key or without polygon geometry are skipped and counted.
func (l *Loader) Load(ctx context.Context, sources []Source) (*Dataset, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", domain.ErrDatasetEmpty)
	}

	parcels := make([][]parcel.Parcel, len(sources))
	stats := make([]SourceStats, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSources)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ps, st, err := l.loadSource(src)
			if err != nil {
				return err
			}
			parcels[i] = ps
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{Sources: stats}
	for _, ps := range parcels {
		ds.Parcels = append(ds.Parcels, ps...)
	}
	if len(ds.Parcels) == 0 {
		return nil, fmt.Errorf("%w: no parcels with a vdc/ward/parcel key and polygon geometry", domain.ErrDatasetEmpty)
	}
	return ds, nil
}

func (l *Loader) loadSource(src Source) ([]parcel.Parcel, SourceStats, error) {
	format, err := src.Resolve()
	if err != nil {
		return nil, SourceStats{}, domain.NewSourceError(src.Path, string(src.Format), err)
	}
	read, ok := l.readers[format]
	if !ok {
		return nil, SourceStats{}, domain.NewSourceError(src.Path, string(format), errors.New("no reader registered"))
	}

	features, err := read(src.Path)
	if err != nil {
		return nil, SourceStats{}, domain.NewSourceError(src.Path, string(format), err)
	}

	st := SourceStats{Path: src.Path, Format: format, Features: len(features)}
	out := make([]parcel.Parcel, 0, len(features))
	for i, f := range features {
		p, err := l.toParcel(f, src.Path)
		if err != nil {
			st.Skipped++
			l.logger.Debug("skipping feature",
				zap.String("source", src.Path),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, p)
	}
	st.Parcels = len(out)

	l.logger.Info("dataset source loaded",
		zap.String("source", src.Path),
		zap.String("format", string(format)),
		zap.Int("features", st.Features),
		zap.Int("parcels", st.Parcels),
		zap.Int("skipped", st.Skipped),
	)
	return out, st, nil
}

func (l *Loader) toParcel(f *geojson.Feature, source string) (parcel.Parcel, error) {
	if f == nil {
		return parcel.Parcel{}, fmt.Errorf("%w: empty feature", domain.ErrUnsupportedGeometry)
	}
	key, err := l.fields.ExtractKey(f.Properties)
	if err != nil {
		return parcel.Parcel{}, err
	}
	return parcel.New(key, f.Geometry, f.Properties, source)
}
