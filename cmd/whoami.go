package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"myblog/client/internal/auth"
)

var whoamiOffline bool

// whoamiCmd shows who the stored token says you are and, unless --offline,
// what the server knows about that user.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the logged-in user",
	Long: `The whoami command prints the user id decoded from the stored token. The
token is not verified locally; the server profile is fetched to confirm it
unless --offline is given. When the server is unreachable the last fetched
profile is shown instead.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		out := a.Toast.Writer()

		if !a.Session.IsAuthenticated() {
			printNotLoggedIn(out)
			return nil
		}

		id, err := a.Auth.WhoAmI(cmd.Context(), !whoamiOffline)
		if err != nil && id == nil {
			return reportError(a, "fetching your profile", err)
		}

		fmt.Fprintf(out, "👤 Current user: %s\n\n", id.DisplayName())
		rows := pterm.TableData{
			{"User ID", strconv.FormatInt(id.UserID, 10)},
		}
		if id.Username != "" {
			rows = append(rows, []string{"Username", id.Username})
		}
		if id.Email != "" {
			rows = append(rows, []string{"Email", id.Email})
		}
		if u := id.User; u != nil {
			if u.Location != "" {
				rows = append(rows, []string{"Location", u.Location})
			}
			if u.MemberSince != "" {
				rows = append(rows, []string{"Member since", a.Moment.Format(u.MemberSince)})
			}
		}
		if id.ExpiresAt != nil {
			exp := a.Moment.Local(*id.ExpiresAt, "") + " (" + a.Moment.FromNow(*id.ExpiresAt) + ")"
			if id.Expired(time.Now()) {
				exp = pterm.Red(exp + " expired")
			}
			rows = append(rows, []string{"Token expires", exp})
		}
		rows = append(rows, []string{"Source", sourceLabel(id.Source)})

		table, terr := pterm.DefaultTable.WithData(rows).Srender()
		if terr != nil {
			return terr
		}
		fmt.Fprintln(out, table)

		if err != nil {
			// local identity is shown; the server refused to confirm it
			return reportError(a, "fetching your profile", err)
		}
		return nil
	},
}

func sourceLabel(s auth.Source) string {
	switch s {
	case auth.SourceServer:
		return "server"
	case auth.SourceCache:
		return "cached profile (server unreachable)"
	default:
		return "token (not verified)"
	}
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiOffline, "offline", false, "Only decode the stored token; do not contact the server")
}
