// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	loginUsername      string
	loginPasswordStdin bool
)

// loginCmd exchanges a username and password for a token, stores it and
// switches the session to authenticated.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with your blog username and password",
	Long: `The login command asks the blog for a token using HTTP basic auth, keeps the
token in local storage and reads your user id from it.

The password is prompted for without echo. For scripts, pipe it in and pass
--password-stdin.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if a.Session.IsAuthenticated() {
			fmt.Fprintf(out, "Already logged in as user #%d\n", a.Session.UserID())
			fmt.Fprintln(out, "Run 'myblog logout' first to switch accounts.")
			return nil
		}

		p := newPrompter(cmd.InOrStdin(), out)
		username := strings.TrimSpace(loginUsername)
		if username == "" {
			if username, err = p.Line("Username: "); err != nil {
				return err
			}
		}

		var password string
		if loginPasswordStdin {
			b, err := io.ReadAll(p.reader)
			if err != nil {
				return err
			}
			password = strings.TrimRight(string(b), "\r\n")
		} else if password, err = p.Secret("Password: "); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		stop := startInlineSpinner(out, "Signing in", spinnerFrames, 120*time.Millisecond)
		claims, err := a.Auth.Login(ctx, username, password)
		stop()
		if err != nil {
			return reportError(a, "signing in", err)
		}

		name := claims.Name
		if name == "" {
			name = username
		}
		a.Toast.Successf("Welcome back, %s!", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username to log in as (prompted when empty)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}
