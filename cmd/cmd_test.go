package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/session"
	"myblog/client/internal/storage"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// harness runs commands against a fake blog with isolated config and storage.
type harness struct {
	t    *testing.T
	blog *fakeBlog
	api  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("MYBLOG_API_URL", "")
	t.Setenv("MYBLOG_STORAGE", "")
	t.Setenv("MYBLOG_DEBUG", "")
	blog, srv := newFakeBlog(t)
	return &harness{t: t, blog: blog, api: srv.URL}
}

// resetFlags puts every flag back to its default so runs do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and stdin, returning what it printed.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	full := append([]string{"--api", h.api, "--storage", "sqlite"}, args...)
	err := run(context.Background(), full)
	return out.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) login(user, pass string) {
	h.t.Helper()
	h.mustRun(pass+"\n", "login", "-u", user, "--password-stdin")
}

func isShown(err error) bool {
	var shown *shownError
	return errors.As(err, &shown)
}

func TestVersionSkipsBootstrap(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "myblog "+Version)
}

func TestPing(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("", "ping")
	assert.Contains(t, out, h.api)
	assert.Contains(t, out, "reachable")
}

func TestLoginWhoAmILogout(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "whoami")
	assert.Contains(t, out, "not logged in")

	out = h.mustRun("pw\n", "login", "-u", "alice", "--password-stdin")
	assert.Contains(t, out, "Welcome back, Alice!")

	out = h.mustRun("", "login")
	assert.Contains(t, out, "Already logged in as user #1")

	out = h.mustRun("", "whoami", "--offline")
	assert.Contains(t, out, "Current user: Alice")
	assert.Contains(t, out, "token (not verified)")
	assert.NotContains(t, out, "alice@example.com")

	out = h.mustRun("", "me")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "Lisbon")
	assert.Contains(t, out, "server")

	out = h.mustRun("", "logout")
	assert.Contains(t, out, "You have been logged out")

	out = h.mustRun("", "whoami")
	assert.Contains(t, out, "not logged in")

	out = h.mustRun("", "logout")
	assert.Contains(t, out, "nothing to remove")
}

func TestLoginPromptsForUsername(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("bob\nhunter2\n", "login", "--password-stdin")
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "Welcome back, bob!")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("nope\n", "login", "-u", "alice", "--password-stdin")
	require.Error(t, err)
	assert.True(t, isShown(err))
	assert.True(t, apperrors.IsKind(err, apperrors.APIRequestFailed))

	out := h.mustRun("", "whoami")
	assert.Contains(t, out, "not logged in")
}

func TestPostsLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login("alice", "pw")

	out := h.mustRun("", "posts", "list")
	assert.Contains(t, out, "Hello world")
	assert.Contains(t, out, "Bob's notes")
	assert.Contains(t, out, "First post")
	assert.Contains(t, out, "Page 1 of 1")

	out = h.mustRun("", "posts", "list", "--mine")
	assert.Contains(t, out, "Hello world")
	assert.NotContains(t, out, "Bob's notes")

	out = h.mustRun("", "posts", "create", "--title", "Third", "--body", "A *new* post")
	assert.Contains(t, out, "Post #3 published")
	p, ok := h.blog.post(3)
	require.True(t, ok)
	assert.Equal(t, "alice", p.Author.Username)

	out = h.mustRun("", "posts", "show", "3")
	assert.Contains(t, out, "Third")
	assert.Contains(t, out, "by Alice")
	assert.Contains(t, out, "yours")

	out = h.mustRun("", "posts", "edit", "3", "--title", "Third, revised")
	assert.Contains(t, out, "Post #3 updated")
	p, _ = h.blog.post(3)
	assert.Equal(t, "Third, revised", p.Title)
	assert.Equal(t, "A *new* post", p.Body)

	out = h.mustRun("", "posts", "edit", "3")
	assert.Contains(t, out, "Nothing to change")

	out = h.mustRun("n\n", "posts", "delete", "3")
	assert.Contains(t, out, "Aborted.")
	_, ok = h.blog.post(3)
	assert.True(t, ok)

	out = h.mustRun("", "posts", "delete", "3", "--yes")
	assert.Contains(t, out, "Post #3 deleted")
	_, ok = h.blog.post(3)
	assert.False(t, ok)
}

func TestCreateFromBodyFileStdin(t *testing.T) {
	h := newHarness(t)
	h.login("bob", "hunter2")

	h.mustRun("line one\nline two\n", "posts", "create", "-t", "From stdin", "--body-file", "-")
	p, ok := h.blog.post(3)
	require.True(t, ok)
	assert.Equal(t, "line one\nline two\n", p.Body)
}

func TestCreateValidatesBeforeSending(t *testing.T) {
	h := newHarness(t)
	h.login("alice", "pw")

	_, err := h.run("", "posts", "create", "--title", "T", "--body", "   ")
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))
	_, ok := h.blog.post(3)
	assert.False(t, ok)

	_, err = h.run("", "posts", "create", "--title", "T", "--body", "b", "--body-file", "x.md")
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))
}

func TestWriteCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"posts", "create", "--title", "T", "--body", "B"},
		{"posts", "edit", "1", "--title", "T"},
		{"posts", "delete", "1", "--yes"},
		{"posts", "list", "--mine"},
	} {
		out, err := h.run("", args...)
		require.Error(t, err, args)
		assert.True(t, isShown(err), args)
		assert.True(t, apperrors.IsKind(err, apperrors.NotAuthenticated), args)
		assert.Contains(t, out, "myblog login", args)
	}
}

func TestEditOthersPostIsRefusedLocally(t *testing.T) {
	h := newHarness(t)
	h.login("bob", "hunter2")

	_, err := h.run("", "posts", "edit", "1", "--title", "mine now")
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))
	p, _ := h.blog.post(1)
	assert.Equal(t, "Hello world", p.Title)
}

func TestDeleteOthersPostIsRejectedByServer(t *testing.T) {
	h := newHarness(t)
	h.login("bob", "hunter2")

	_, err := h.run("", "posts", "delete", "1", "--yes")
	require.Error(t, err)
	assert.True(t, isShown(err))
	assert.True(t, apperrors.IsKind(err, apperrors.APIRequestFailed))
	_, ok := h.blog.post(1)
	assert.True(t, ok)
}

func TestShowInvalidID(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "posts", "show", "abc")
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))

	_, err = h.run("", "posts", "show", "99")
	assert.True(t, isShown(err))
}

func TestMalformedTokenIsFatalUntilLogout(t *testing.T) {
	h := newHarness(t)
	origin, err := storage.OriginOf(h.api)
	require.NoError(t, err)
	st, err := storage.Open(storage.Options{Backend: storage.BackendSQLite, Origin: origin})
	require.NoError(t, err)
	require.NoError(t, st.Set(session.TokenKey, "definitely.not-a.token"))
	require.NoError(t, storage.Close(st))

	_, err = h.run("", "whoami")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.MalformedCredential))

	_, err = h.run("", "posts", "list")
	assert.True(t, apperrors.IsKind(err, apperrors.MalformedCredential))

	out := h.mustRun("", "logout")
	assert.Contains(t, out, "could not be read")
	assert.NotContains(t, out, "nothing to remove")

	out = h.mustRun("", "whoami")
	assert.Contains(t, out, "not logged in")

	out = h.mustRun("", "logout")
	assert.Contains(t, out, "nothing to remove")
}

func TestConfigSetAndShow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "config", "set", "per_page", "25")
	assert.Contains(t, out, "per_page = 25")

	_, err := h.run("", "config", "set", "per_page", "1000")
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))

	out = h.mustRun("", "config", "show")
	assert.Contains(t, out, "per_page")
	assert.Contains(t, out, "25")
}
