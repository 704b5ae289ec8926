package commands

import (
	"sort"

	"myusps/internal/usps"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Prints the account profile.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *usps.Session) error {
			profile, err := s.Profile(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(profile)
			}

			keys := make([]string, 0, len(profile))
			for key := range profile {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			t := newTable()
			t.AppendHeader(table.Row{"Field", "Value"})
			for _, key := range keys {
				t.AppendRow(table.Row{key, profile[key]})
			}
			t.Render()
			return nil
		})
	},
}
