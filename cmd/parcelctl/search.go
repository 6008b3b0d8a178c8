package main

import (
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	parcelmap "github.com/kailas-cloud/parcelmap/pkg/sdk"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		q     parcelmap.Query
		mode  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find parcels by VDC, ward and parcel number",
		Long:  "Prints matching parcels as a GeoJSON FeatureCollection. Empty filters match everything.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			q.Mode = parcelmap.SearchMode(mode)
			q.Limit = limit
			res, err := c.Search(cmd.Context(), q)
			if err != nil {
				return eris.Wrap(err, "search")
			}
			cmd.PrintErrf("%d of %d parcels\n", len(res.Parcels), res.Total)
			return writeJSON(cmd.OutOrStdout(), collection(res.Parcels))
		},
	}
	cmd.Flags().StringVar(&q.VDC, "vdc", "", "VDC name")
	cmd.Flags().StringVar(&q.Ward, "ward", "", "ward number")
	cmd.Flags().StringVar(&q.Parcel, "parcel", "", "parcel number")
	cmd.Flags().StringVar(&mode, "mode", "exact", "match mode: exact or fuzzy")
	cmd.Flags().IntVar(&limit, "limit", 0, "max parcels to print (0 = all)")
	return cmd
}

func newGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get VDC WARD PARCEL",
		Short: "Print one parcel as a GeoJSON Feature",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			p, err := c.Get(cmd.Context(), keyFromArgs(args))
			if err != nil {
				return eris.Wrap(err, "get")
			}
			f := p.Feature()
			f.BBox = geojson.NewBBox(p.Bound)
			return writeJSON(cmd.OutOrStdout(), f)
		},
	}
}

func newAtCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "at LAT LON",
		Short: "Find the parcels containing a location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return eris.Wrapf(err, "parse latitude %q", args[0])
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return eris.Wrapf(err, "parse longitude %q", args[1])
			}

			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.At(cmd.Context(), lat, lon)
			if err != nil {
				return eris.Wrap(err, "locate")
			}
			return writeJSON(cmd.OutOrStdout(), collection(res.Parcels))
		},
	}
}

func keyFromArgs(args []string) parcelmap.Key {
	return parcelmap.Key{VDC: args[0], Ward: args[1], Parcel: args[2]}
}

func collection(parcels []parcelmap.Parcel) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range parcels {
		fc.Append(p.Feature())
	}
	return fc
}
