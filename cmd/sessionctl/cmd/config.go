package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/couchsession/app/sessions"
	"github.com/dmitrymomot/couchsession/core/config"
)

type configView struct {
	Backend                  string `json:"backend"`
	TimeoutInSeconds         int    `json:"timeout_in_seconds"`
	PrincipalSessionsEnabled bool   `json:"principal_sessions_enabled"`
	TouchInterval            string `json:"touch_interval"`
	KeyPrefix                string `json:"key_prefix"`
	CookieName               string `json:"cookie_name"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective session configuration",
	Long: `Print the session configuration resolved from the environment.

No connection to the backend is made.

Example:
  sessionctl config -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg sessions.Config
		if err := config.Load(&cfg); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if backend != "" {
			cfg.Backend = backend
		}
		if err := cfg.Session.Validate(); err != nil {
			return err
		}

		view := configView{
			Backend:                  cfg.Backend,
			TimeoutInSeconds:         cfg.Session.TimeoutInSeconds,
			PrincipalSessionsEnabled: cfg.Session.PrincipalSessionsEnabled,
			TouchInterval:            cfg.Session.TouchInterval.String(),
			KeyPrefix:                cfg.Session.KeyPrefix,
			CookieName:               cfg.Cookie.CookieName,
		}

		out := cmd.OutOrStdout()
		if output == "json" {
			return printJSON(out, view)
		}

		fmt.Fprintf(out, "%-28s %s\n", "backend", view.Backend)
		fmt.Fprintf(out, "%-28s %d\n", "timeout_in_seconds", view.TimeoutInSeconds)
		fmt.Fprintf(out, "%-28s %t\n", "principal_sessions_enabled", view.PrincipalSessionsEnabled)
		fmt.Fprintf(out, "%-28s %s\n", "touch_interval", view.TouchInterval)
		fmt.Fprintf(out, "%-28s %s\n", "key_prefix", view.KeyPrefix)
		fmt.Fprintf(out, "%-28s %s\n", "cookie_name", view.CookieName)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the session backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *sessions.App[document]) error {
			if err := app.Healthcheck(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", app.Backend())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
}
