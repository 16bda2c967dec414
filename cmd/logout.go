// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd forgets the stored token. The API has no revoke endpoint, so the
// token itself stays valid until it expires.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved token",
	Long: `The logout command deletes the token kept in local storage together with the
cached profile, and resets the session to anonymous. Running it while logged
out is harmless. It also clears a stored token that can no longer be read.`,
	Annotations: map[string]string{purgeMalformed: "true"},

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		wasIn := a.Session.IsAuthenticated()
		if err := a.Auth.Logout(cmd.Context()); err != nil {
			return err
		}
		switch {
		case a.PurgedToken:
			a.Toast.Success("Removed a saved token that could not be read")
			return nil
		case !wasIn:
			fmt.Fprintln(a.Toast.Writer(), "Not logged in; nothing to remove.")
			return nil
		}
		a.Toast.Success("You have been logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
