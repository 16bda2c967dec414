package cmd

import (
	"errors"
	"fmt"
	"io"

	"myblog/client/internal/app"
	"myblog/client/internal/backend"
	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/httperrors"
	"myblog/client/internal/logging"
)

// shownError is an error the user has already been told about.
// Execute exits non-zero without printing it again.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// reportError presents err the way its kind deserves and marks it shown.
// context reads like "listing posts".
func reportError(a *app.App, context string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		logging.PresentAPIError(apiErr.StatusCode, apiErr.Message)
	case httperrors.IsNetworkError(err):
		err = httperrors.FormatNetworkError(err, context, httperrors.ExtractHostFromURL(a.Config.APIURL))
	case apperrors.IsKind(err, apperrors.NotAuthenticated):
		printNotLoggedIn(a.Toast.Writer())
	default:
		return err
	}
	return &shownError{err: err}
}

func printNotLoggedIn(w io.Writer) {
	fmt.Fprintln(w, "🔒 You're not logged in yet!")
	fmt.Fprintln(w, "   Run 'myblog login' to get started.")
}

// requireLogin fails with a shown NotAuthenticated error for anonymous sessions.
func requireLogin(a *app.App) error {
	if a.Session.IsAuthenticated() {
		return nil
	}
	return reportError(a, "", apperrors.New(apperrors.NotAuthenticated, "not logged in"))
}
