package commands

import (
	"fmt"
	"time"

	"myusps/internal/usps"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var mailDate string

func init() {
	mailCmd.Flags().StringVar(&mailDate, "date", "", "The delivery date to list, as YYYY-MM-DD. Defaults to today.")
	rootCmd.AddCommand(mailCmd)
}

var mailCmd = &cobra.Command{
	Use:   "mail [--date YYYY-MM-DD]",
	Short: "Lists the scanned mail pieces for a day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var date time.Time
		if mailDate != "" {
			var err error
			date, err = time.ParseInLocation(time.DateOnly, mailDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		return withSession(cmd.Context(), func(s *usps.Session) error {
			mail, err := s.Mail(cmd.Context(), date)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(mail)
			}

			t := newTable()
			t.AppendHeader(table.Row{"Id", "Date", "Image"})
			for _, m := range mail {
				t.AppendRow(table.Row{m.Id, m.Date.Format(time.DateOnly), m.ImageUrl})
			}
			t.Render()
			return nil
		})
	},
}
