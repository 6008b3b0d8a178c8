package main

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	parcelmap "github.com/kailas-cloud/parcelmap/pkg/sdk"
)

func newSplitCmd(root *rootOptions) *cobra.Command {
	var (
		direction string
		area      float64
	)
	cmd := &cobra.Command{
		Use:   "split VDC WARD PARCEL",
		Short: "Cut a piece of a given area from one side of a parcel",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Split(cmd.Context(), keyFromArgs(args), parcelmap.Direction(direction), area)
			if err != nil {
				return eris.Wrap(err, "split")
			}

			fc := geojson.NewFeatureCollection()
			piece := geojson.NewFeature(res.Piece)
			piece.Properties["role"] = "piece"
			piece.Properties["area_sqm"] = res.PieceArea
			remainder := geojson.NewFeature(res.Remainder)
			remainder.Properties["role"] = "remainder"
			remainder.Properties["area_sqm"] = res.RemainderArea
			cut := geojson.NewFeature(res.Cut)
			cut.Properties["role"] = "cut"
			cut.Properties["iterations"] = res.Iterations
			fc.Append(piece).Append(remainder).Append(cut)
			return writeJSON(cmd.OutOrStdout(), fc)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "north", "side to take the piece from: north, south, east or west")
	cmd.Flags().Float64Var(&area, "area", 0, "piece area in square meters (required)")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}
