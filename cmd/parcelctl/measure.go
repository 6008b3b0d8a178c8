package main

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	parcelmap "github.com/kailas-cloud/parcelmap/pkg/sdk"
)

func newMeasureCmd(root *rootOptions) *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "measure LON,LAT LON,LAT [LON,LAT...]",
		Short: "Measure the geodesic length of a polyline",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args)
			if err != nil {
				return err
			}

			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := c.Measure(cmd.Context(), line, parcelmap.Unit(unit))
			if err != nil {
				return eris.Wrap(err, "measure")
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"unit":     m.Unit,
				"segments": m.Segments,
				"total":    m.Total,
				"text":     m.Text,
			})
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "length unit: feet or meters (default: feet)")
	return cmd
}

func parseLine(args []string) (orb.LineString, error) {
	line := make(orb.LineString, 0, len(args))
	for _, a := range args {
		lonStr, latStr, ok := strings.Cut(a, ",")
		if !ok {
			return nil, eris.Errorf("point %q: want LON,LAT", a)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "point %q: longitude", a)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "point %q: latitude", a)
		}
		line = append(line, orb.Point{lon, lat})
	}
	return line, nil
}
