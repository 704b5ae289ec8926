package commands

import (
	"time"

	"myusps/internal/usps"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(packagesCmd)
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Lists the packages on the dashboard.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *usps.Session) error {
			packages, err := s.Packages(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(packages)
			}

			t := newTable()
			t.AppendHeader(table.Row{"Tracking Number", "Status", "Detail", "Time", "From", "Location"})
			for _, p := range packages {
				when := ""
				if p.StatusTime != nil {
					when = p.StatusTime.Format(time.DateTime)
				}
				t.AppendRow(table.Row{
					p.TrackingNumber,
					p.PrimaryStatus,
					p.SecondaryStatus,
					when,
					p.ShippedFrom,
					p.Location,
				})
			}
			t.Render()
			return nil
		})
	},
}
