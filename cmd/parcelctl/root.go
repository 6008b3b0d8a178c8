package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/parcelmap/internal/config"
	parcelmap "github.com/kailas-cloud/parcelmap/pkg/sdk"
)

// rootOptions holds persistent flags shared by every subcommand.
type rootOptions struct {
	sources  []string
	config   string
	redis    string
	password string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "parcelctl",
		Short: "Query cadastral parcel datasets",
		Long: "Loads GeoJSON, KML, KMZ or Shapefile parcel datasets and answers lookups by " +
			"VDC/Ward/Parcel number or location, labels parcel edges, measures lines and splits parcels.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&opts.sources, "source", "s", nil, "dataset file (repeatable); defaults to the config's sources")
	pf.StringVarP(&opts.config, "config", "c", "", "config file to read sources and field aliases from")
	pf.StringVar(&opts.redis, "redis", "", "redis/valkey address for the label cache")
	pf.StringVar(&opts.password, "redis-password", "", "redis/valkey password")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log SDK operations to stderr")

	root.AddCommand(
		newSearchCmd(opts),
		newGetCmd(opts),
		newAtCmd(opts),
		newLabelsCmd(opts),
		newSplitCmd(opts),
		newMeasureCmd(opts),
		newDirectoryCmd(opts),
		newVersionCmd(),
	)
	return root
}

// open builds an SDK client from flags, falling back to the config file for sources.
func (o *rootOptions) open(ctx context.Context) (*parcelmap.Client, error) {
	var clientOpts []parcelmap.Option

	sources := o.sources
	if len(sources) == 0 || o.config != "" {
		cfgOpts, cfgSources, err := o.fromConfig()
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, cfgOpts...)
		if len(sources) == 0 {
			clientOpts = append(clientOpts, cfgSources...)
		}
	}
	for _, s := range sources {
		clientOpts = append(clientOpts, parcelmap.WithSource(s))
	}

	if o.redis != "" {
		clientOpts = append(clientOpts, parcelmap.WithRedisCache(o.redis, o.password))
	}
	if o.verbose {
		clientOpts = append(clientOpts, parcelmap.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	c, err := parcelmap.Open(ctx, clientOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "open dataset")
	}
	return c, nil
}

func (o *rootOptions) fromConfig() (opts, sources []parcelmap.Option, err error) {
	var cfg config.Config
	if o.config != "" {
		cfg, err = config.LoadFile(o.config)
	} else {
		cfg, err = config.Load(config.GetEnv())
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "no --source given and config could not be loaded")
	}

	opts = append(opts,
		parcelmap.WithFields(cfg.Dataset.Fields.VDC, cfg.Dataset.Fields.Ward, cfg.Dataset.Fields.Parcel),
		parcelmap.WithMaxResults(cfg.Search.MaxResults),
		parcelmap.WithSplitTolerance(cfg.Split.ToleranceSqm, cfg.Split.MaxIterations),
		parcelmap.WithLabelDefaults(parcelmap.LabelOptions{
			Unit:          parcelmap.Unit(cfg.Labels.Unit),
			MinSegment:    cfg.Labels.MinSegment,
			StraightAngle: cfg.Labels.StraightAngle,
			OffsetFactor:  cfg.Labels.OffsetFactor,
			AllRings:      cfg.Labels.AllRings,
		}),
	)
	for _, s := range cfg.Dataset.Sources {
		sources = append(sources, parcelmap.WithSourceFormat(s.Path, s.Format))
	}
	return opts, sources, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
