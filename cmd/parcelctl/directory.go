package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDirectoryCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "List VDCs and wards with parcel counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			dir := c.Directory(cmd.Context())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), dir)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "VDC\tWARD\tPARCELS")
			for _, v := range dir {
				for _, w := range v.Wards {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", v.VDC, w.Ward, w.Parcels)
				}
			}
			_, _ = fmt.Fprintf(tw, "total\t\t%d\n", c.Count())
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
