// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package app builds the application root once per process. The API client,
// time formatter, toaster and session helper are wired together here and
// handed to every command through its context.
package app

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/pterm/pterm"

	"myblog/client/internal/auth"
	"myblog/client/internal/backend"
	"myblog/client/internal/config"
	"myblog/client/internal/moment"
	"myblog/client/internal/notify"
	"myblog/client/internal/render"
	"myblog/client/internal/session"
	"myblog/client/internal/storage"
	"myblog/client/internal/terminal"
)

// App is the per-process root. Commands read it; only the session mutates.
type App struct {
	Config  config.Config
	API     *backend.HTTP
	Moment  *moment.Formatter
	Toast   *notify.Toaster
	Render  *render.Renderer
	Session *session.Session
	Auth    *auth.Service
	Store   storage.Store
	Log     *pterm.Logger

	// PurgedToken is set when an unreadable stored token was deleted while
	// starting up.
	PurgedToken bool
}

// Options tune New beyond what Config carries.
type Options struct {
	// Out receives toasts; defaults to os.Stdout.
	Out io.Writer
	// Store replaces the backend selected by Config.Storage.
	Store storage.Store
	// StoragePath overrides the sqlite file location.
	StoragePath string
}

// New wires the application from cfg. A stored token that cannot be decoded
// is returned as a MalformedCredential error; callers must not continue.
func New(cfg config.Config, opts Options) (*App, error) {
	log := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	if cfg.Debug {
		log = pterm.DefaultLogger.WithLevel(pterm.LogLevelDebug)
	}

	fmtr, err := moment.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg, opts, log)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(st, session.WithDebug(cfg.Debug), session.WithLogger(log))
	if err != nil {
		_ = storage.Close(st)
		return nil, err
	}

	api := backend.New(cfg.APIURL)
	if cfg.Debug {
		api.SetLogger(log)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &App{
		Config:  cfg,
		API:     api,
		Moment:  fmtr,
		Toast:   notify.New(out, notify.DefaultOptions()),
		Render:  render.New(min(terminal.Width(), render.DefaultWidth)),
		Session: sess,
		Auth:    auth.NewService(api, st, sess),
		Store:   st,
		Log:     log,
	}, nil
}

func openStore(cfg config.Config, opts Options, log *pterm.Logger) (storage.Store, error) {
	if opts.Store != nil {
		return opts.Store, nil
	}
	origin, err := storage.OriginOf(cfg.APIURL)
	if err != nil {
		return nil, err
	}
	return storage.Open(storage.Options{
		Backend: cfg.Storage,
		Origin:  origin,
		Path:    opts.StoragePath,
		Logger:  log,
	})
}

// PurgeCredentials deletes the stored token and cached profile without
// decoding anything. It is the way out of a MalformedCredential failure.
func PurgeCredentials(cfg config.Config, opts Options) error {
	st, err := openStore(cfg, opts, pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo))
	if err != nil {
		return err
	}
	if opts.Store == nil {
		defer storage.Close(st)
	}
	if err := st.Delete(session.TokenKey); err != nil {
		return err
	}
	return st.Delete(auth.ProfileKey)
}

// Close stops pending toasts and releases the store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	a.Toast.Close()
	return storage.Close(a.Store)
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying a.
func WithContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ErrNoApp is returned by FromContext when the bootstrap did not run.
var ErrNoApp = errors.New("application not initialized")

// FromContext returns the App attached by WithContext.
func FromContext(ctx context.Context) (*App, error) {
	if ctx == nil {
		return nil, ErrNoApp
	}
	a, ok := ctx.Value(ctxKey{}).(*App)
	if !ok || a == nil {
		return nil, ErrNoApp
	}
	return a, nil
}
