// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the MyBlog client.
// Every command runs against an App built once per process in the root's
// pre-run hook: config, API client, time formatter, toaster and session.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"myblog/client/internal/app"
	"myblog/client/internal/config"
	apperrors "myblog/client/internal/errors"
	"myblog/client/internal/logging"
)

var (
	apiURLFlag  string
	storageFlag string
	debugFlag   bool
)

// Command annotations read by the bootstrap.
const (
	// skipBootstrap marks commands that run without an App.
	skipBootstrap = "skip-bootstrap"
	// purgeMalformed lets a command discard an unreadable token instead of failing.
	purgeMalformed = "purge-malformed"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "myblog",
	Short: "Read and write posts on a MyBlog server",
	Long: `myblog is a command-line client for the MyBlog REST API. It keeps the token
issued at login in local storage and decodes it to know who you are without
asking the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// bootstrap builds the App for one execution and releases it afterwards.
type bootstrap struct {
	app *app.App
}

func (b *bootstrap) preRun(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURLFlag != "" {
		if err := cfg.Set("api_url", apiURLFlag); err != nil {
			return apperrors.Wrap(apperrors.InvalidInput, "--api", err)
		}
	}
	if storageFlag != "" {
		if err := cfg.Set("storage", storageFlag); err != nil {
			return apperrors.Wrap(apperrors.InvalidInput, "--storage", err)
		}
	}
	if debugFlag {
		cfg.Debug = true
	}

	opts := app.Options{Out: cmd.OutOrStdout()}
	a, err := app.New(cfg, opts)
	if apperrors.IsKind(err, apperrors.MalformedCredential) && cmd.Annotations[purgeMalformed] == "true" {
		if perr := app.PurgeCredentials(cfg, opts); perr != nil {
			return perr
		}
		a, err = app.New(cfg, opts)
		if err == nil {
			a.PurgedToken = true
		}
	}
	if err != nil {
		if apperrors.IsKind(err, apperrors.MalformedCredential) {
			return fmt.Errorf("stored token is unreadable; remove it with 'myblog logout': %w", err)
		}
		return err
	}
	b.app = a
	cmd.SetContext(app.WithContext(cmd.Context(), a))
	return nil
}

func (b *bootstrap) close() {
	if b.app != nil {
		_ = b.app.Close()
		b.app = nil
	}
}

// Execute runs the CLI application and exits non-zero on failure.
func Execute() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, pterm.Red(logging.PresentError("myblog", err)))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var b bootstrap
	defer b.close()
	rootCmd.PersistentPreRunE = b.preRun
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// appFrom returns the App the bootstrap attached to cmd.
func appFrom(cmd *cobra.Command) (*app.App, error) {
	return app.FromContext(cmd.Context())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api", "", "Blog API base URL (default from config, MYBLOG_API_URL or http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Token storage backend: auto, keychain, sqlite or memory")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log session transitions and HTTP requests")
}
