// Package cmd contains the CLI commands for sessionctl.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/couchsession/app/sessions"
	"github.com/dmitrymomot/couchsession/core/config"
	"github.com/dmitrymomot/couchsession/core/logger"
	"github.com/dmitrymomot/couchsession/core/session"
)

// document keeps session data opaque; sessionctl never interprets it.
type document = json.RawMessage

var (
	verbose bool
	output  string
	backend string
)

// openApp connects to the configured backend. Replaced in tests.
var openApp = func(ctx context.Context, opts ...sessions.Option[document]) (*sessions.App[document], error) {
	var cfg sessions.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Backend = backend
	}

	opts = append([]sessions.Option[document]{
		sessions.WithConfig[document](cfg),
		sessions.WithLogger[document](cliLogger()),
	}, opts...)
	return sessions.New(ctx, opts...)
}

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Inspect and revoke stored sessions",
	Long: `sessionctl operates directly on the session store used by the application.

The backend and its connection settings are read from the same environment
variables as the application (SESSION_BACKEND, COUCHBASE_*, REDIS_URL).

Examples:
  # Show the effective session configuration
  sessionctl config

  # List every live session of a user
  sessionctl sessions list --principal alice

  # Sign a user out everywhere
  sessionctl sessions revoke --principal alice`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "override SESSION_BACKEND (couchbase, redis, memory)")
}

func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logger.New(logger.WithOutput(os.Stderr), logger.WithLevel(level))
}

// withApp opens the store, runs fn and closes the connection.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *sessions.App[document]) error, opts ...sessions.Option[document]) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := openApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer app.Close()

	return fn(ctx, app)
}

// principalIndex enables principal lookups regardless of SESSION_PRINCIPAL_SESSIONS_ENABLED.
func principalIndex() sessions.Option[document] {
	return sessions.WithSessionOptions[document](session.WithPrincipalSessionsEnabled(true))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
