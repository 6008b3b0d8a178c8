package main

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	parcelmap "github.com/kailas-cloud/parcelmap/pkg/sdk"
)

func newLabelsCmd(root *rootOptions) *cobra.Command {
	var flags parcelmap.LabelOptions
	var unit string

	cmd := &cobra.Command{
		Use:   "labels VDC WARD PARCEL",
		Short: "Print generalized edge labels for a parcel",
		Long: "Merges short or nearly straight boundary edges and prints one GeoJSON point per " +
			"remaining segment, carrying its length and rotation. Unset flags keep the configured defaults.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			opts := c.DefaultLabels()
			f := cmd.Flags()
			if f.Changed("unit") {
				opts.Unit = parcelmap.Unit(unit)
			}
			if f.Changed("min-segment") {
				opts.MinSegment = flags.MinSegment
			}
			if f.Changed("straight-angle") {
				opts.StraightAngle = flags.StraightAngle
			}
			if f.Changed("offset-factor") {
				opts.OffsetFactor = flags.OffsetFactor
			}
			if f.Changed("all-rings") {
				opts.AllRings = flags.AllRings
			}

			labels, err := c.Labels(cmd.Context(), keyFromArgs(args), opts)
			if err != nil {
				return eris.Wrap(err, "labels")
			}
			return writeJSON(cmd.OutOrStdout(), labelCollection(labels))
		},
	}

	def := parcelmap.DefaultLabelOptions()
	cmd.Flags().StringVar(&unit, "unit", string(def.Unit), "length unit: feet or meters")
	cmd.Flags().Float64Var(&flags.MinSegment, "min-segment", def.MinSegment, "merge edges shorter than this (in unit)")
	cmd.Flags().Float64Var(&flags.StraightAngle, "straight-angle", def.StraightAngle, "merge turns flatter than this many degrees")
	cmd.Flags().Float64Var(&flags.OffsetFactor, "offset-factor", def.OffsetFactor, "perpendicular label offset")
	cmd.Flags().BoolVar(&flags.AllRings, "all-rings", def.AllRings, "label every polygon, not just the first")
	return cmd
}

func labelCollection(labels []parcelmap.Label) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range labels {
		f := geojson.NewFeature(l.Anchor)
		f.Properties["text"] = l.Text
		f.Properties["distance"] = l.Distance
		f.Properties["unit"] = string(l.Unit)
		f.Properties["edges"] = l.Edges
		f.Properties["rotation"] = l.Rotation
		fc.Append(f)
	}
	return fc
}
