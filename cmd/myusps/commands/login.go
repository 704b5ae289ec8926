package commands

import (
	"fmt"

	"myusps/internal/usps"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in and saves the session cookies.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetSession logs in exactly once, with or without saved cookies
		eagerLogin = true
		return withSession(cmd.Context(), func(s *usps.Session) error {
			fmt.Printf("logged in, %d cookies saved\n", len(s.Cookies().Entries()))
			return nil
		})
	},
}
