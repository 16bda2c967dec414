package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"myblog/client/internal/app"
	"myblog/client/internal/backend"
	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/moment"
)

const summaryWidth = 48

var (
	listPage    int
	listPerPage int
	listMine    bool

	postTitle    string
	postBody     string
	postBodyFile string

	deleteYes bool
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "List, read and write blog posts",
}

var postsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List posts, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		out := a.Toast.Writer()

		perPage := listPerPage
		if perPage <= 0 {
			perPage = a.Config.PerPage
		}

		stop := startInlineSpinner(cmd.OutOrStdout(), "Loading posts", spinnerFrames, 120*time.Millisecond)
		page, err := a.API.ListPosts(cmd.Context(), listPage, perPage)
		stop()
		if err != nil {
			return reportError(a, "listing posts", err)
		}

		items := page.Items
		if listMine {
			if err := requireLogin(a); err != nil {
				return err
			}
			items = ownPosts(items, a.Session.UserID())
		}
		if len(items) == 0 {
			fmt.Fprintln(out, "No posts to show.")
			return nil
		}

		rows := pterm.TableData{{"ID", "Title", "Author", "Posted", "Views", "Summary"}}
		for _, p := range items {
			title := p.Title
			if isOwnPost(p, a.Session.UserID()) {
				title += " ✎"
			}
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10),
				title,
				authorName(p),
				postedAt(a, p.Timestamp),
				strconv.Itoa(p.Views),
				a.Render.Excerpt(p.Summary, summaryWidth),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table)
		fmt.Fprintf(out, "Page %d of %d · %d posts", page.Meta.Page, page.Meta.TotalPages, page.Meta.TotalItems)
		if page.HasNext() {
			fmt.Fprintf(out, " · next: myblog posts list --page %d", page.Meta.Page+1)
		}
		fmt.Fprintln(out)
		return nil
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		p, err := a.API.GetPost(cmd.Context(), id)
		if err != nil {
			return reportError(a, "fetching the post", err)
		}

		out := a.Toast.Writer()
		fmt.Fprintln(out, pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(p.Title))
		meta := fmt.Sprintf("#%d by %s · %s · %d views", p.ID, authorName(*p), postedAt(a, p.Timestamp), p.Views)
		if isOwnPost(*p, a.Session.UserID()) {
			meta += " · yours"
		}
		fmt.Fprintln(out, pterm.Gray(meta))
		fmt.Fprintln(out, a.Render.Markdown(p.Body))
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",
	Long: `The create command publishes a post as the logged-in user. The body is taken
from --body, from the file named by --body-file ("-" for stdin), or prompted for.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(a); err != nil {
			return err
		}

		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		in := backend.PostInput{Title: postTitle}
		if strings.TrimSpace(in.Title) == "" {
			if in.Title, err = p.Line("Title: "); err != nil {
				return err
			}
		}
		body, set, err := bodyFromFlags(cmd, p)
		if err != nil {
			return err
		}
		if !set {
			if body, err = p.Line("Body: "); err != nil {
				return err
			}
		}
		in.Body = body

		if err := in.Validate(); err != nil {
			return err
		}
		token, err := a.Session.Token()
		if err != nil {
			return reportError(a, "publishing the post", err)
		}
		post, err := a.API.CreatePost(cmd.Context(), token, in)
		if err != nil {
			return reportError(a, "publishing the post", err)
		}
		a.Toast.Successf("Post #%d published", post.ID)
		return nil
	},
}

var postsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title or body of one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(a); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		current, err := a.API.GetPost(cmd.Context(), id)
		if err != nil {
			return reportError(a, "fetching the post", err)
		}
		if !isOwnPost(*current, a.Session.UserID()) {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("post #%d belongs to someone else; only its author can edit it", id))
		}

		in := backend.PostInput{Title: current.Title, Body: current.Body}
		if cmd.Flags().Changed("title") {
			in.Title = postTitle
		}
		body, set, err := bodyFromFlags(cmd, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		if set {
			in.Body = body
		}
		if in.Title == current.Title && in.Body == current.Body {
			fmt.Fprintln(a.Toast.Writer(), "Nothing to change; pass --title, --body or --body-file.")
			return nil
		}

		token, err := a.Session.Token()
		if err != nil {
			return reportError(a, "updating the post", err)
		}
		if _, err := a.API.UpdatePost(cmd.Context(), token, id, in); err != nil {
			return reportError(a, "updating the post", err)
		}
		a.Toast.Successf("Post #%d updated", id)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete one of your posts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if err := requireLogin(a); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		if !deleteYes {
			ok, err := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(fmt.Sprintf("Delete post #%d?", id))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.Toast.Writer(), "Aborted.")
				return nil
			}
		}

		token, err := a.Session.Token()
		if err != nil {
			return reportError(a, "deleting the post", err)
		}
		if err := a.API.DeletePost(cmd.Context(), token, id); err != nil {
			return reportError(a, "deleting the post", err)
		}
		a.Toast.Successf("Post #%d deleted", id)
		return nil
	},
}

func parsePostID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.New(apperrors.InvalidInput, fmt.Sprintf("invalid post id %q", s))
	}
	return id, nil
}

// bodyFromFlags returns the body given by --body or --body-file and whether
// either was set.
func bodyFromFlags(cmd *cobra.Command, p *prompter) (string, bool, error) {
	bodySet := cmd.Flags().Changed("body")
	fileSet := cmd.Flags().Changed("body-file")
	switch {
	case bodySet && fileSet:
		return "", false, apperrors.New(apperrors.InvalidInput, "use either --body or --body-file, not both")
	case bodySet:
		return postBody, true, nil
	case fileSet:
		var (
			b   []byte
			err error
		)
		if postBodyFile == "-" {
			b, err = io.ReadAll(p.reader)
		} else {
			b, err = os.ReadFile(postBodyFile)
		}
		if err != nil {
			return "", false, fmt.Errorf("read body: %w", err)
		}
		return string(b), true, nil
	}
	return "", false, nil
}

// isOwnPost compares the post's author with the user id decoded from the
// token. It only decides what to offer; the server enforces ownership.
func isOwnPost(p backend.Post, userID int64) bool {
	return userID != 0 && p.Author != nil && p.Author.ID == userID
}

func ownPosts(items []backend.Post, userID int64) []backend.Post {
	var mine []backend.Post
	for _, p := range items {
		if isOwnPost(p, userID) {
			mine = append(mine, p)
		}
	}
	return mine
}

func authorName(p backend.Post) string {
	if p.Author == nil {
		return "unknown"
	}
	return p.Author.DisplayName()
}

func postedAt(a *app.App, ts string) string {
	t, err := moment.ParseUTC(ts)
	if err != nil {
		return ts
	}
	return a.Moment.FromNow(t)
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsEditCmd, postsDeleteCmd)

	postsListCmd.Flags().IntVar(&listPage, "page", 1, "Page to show")
	postsListCmd.Flags().IntVar(&listPerPage, "per-page", 0, "Posts per page, at most 100 (default from config)")
	postsListCmd.Flags().BoolVar(&listMine, "mine", false, "Only show your own posts on this page")

	for _, c := range []*cobra.Command{postsCreateCmd, postsEditCmd} {
		c.Flags().StringVarP(&postTitle, "title", "t", "", "Post title")
		c.Flags().StringVarP(&postBody, "body", "b", "", "Post body (markdown)")
		c.Flags().StringVar(&postBodyFile, "body-file", "", `Read the body from a file, "-" for stdin`)
	}

	postsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}
