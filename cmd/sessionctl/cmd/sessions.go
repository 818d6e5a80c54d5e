package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/couchsession/app/sessions"
	"github.com/dmitrymomot/couchsession/core/session"
)

var principal string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session inspection and revocation",
	Long: `Commands for reading and deleting stored sessions.

Principal lookups read the principal index, which the application writes
only when SESSION_PRINCIPAL_SESSIONS_ENABLED is true.

Examples:
  sessionctl sessions get 6f1c0e9a-4a57-4d0b-9b67-8f1f2d0f3c11
  sessionctl sessions list --principal alice
  sessionctl sessions revoke --principal alice`,
}

var sessionsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *sessions.App[document]) error {
			// Peek neither extends nor removes the session.
			sess, err := app.Manager().Peek(ctx, args[0])
			if err != nil {
				if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
					return fmt.Errorf("session %s: %w", args[0], err)
				}
				return err
			}
			return printSessions(cmd.OutOrStdout(), []session.Session[document]{sess})
		})
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live sessions of a principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *sessions.App[document]) error {
			found, err := app.Manager().FindByPrincipal(ctx, principal)
			if err != nil {
				return err
			}
			if len(found) == 0 && output != "json" {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}
			return printSessions(cmd.OutOrStdout(), sortedSessions(found))
		}, principalIndex())
	},
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Delete every session of a principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *sessions.App[document]) error {
			n, err := app.Manager().DeleteByPrincipal(ctx, principal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %d session(s) of %s\n", n, principal)
			return nil
		}, principalIndex())
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *sessions.App[document]) error {
			if err := app.Manager().Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{sessionsListCmd, sessionsRevokeCmd} {
		c.Flags().StringVarP(&principal, "principal", "p", "", "principal name (required)")
		_ = c.MarkFlagRequired("principal")
	}

	sessionsCmd.AddCommand(sessionsGetCmd, sessionsListCmd, sessionsRevokeCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func sortedSessions(m map[string]session.Session[document]) []session.Session[document] {
	list := make([]session.Session[document], 0, len(m))
	list = slices.AppendSeq(list, maps.Values(m))
	slices.SortFunc(list, func(a, b session.Session[document]) int {
		return a.CreationTime.Compare(b.CreationTime)
	})
	return list
}

func printSessions(w io.Writer, list []session.Session[document]) error {
	if output == "json" {
		return printJSON(w, list)
	}

	fmt.Fprintf(w, "\n%-36s  %-20s  %-19s  %-19s  %s\n", "ID", "PRINCIPAL", "CREATED", "LAST ACCESSED", "EXPIRES")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, s := range list {
		expires := "never"
		if exp := s.ExpiresAt(); !exp.IsZero() {
			expires = exp.Format(time.DateTime)
		}
		owner := s.Principal
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-19s  %-19s  %s\n",
			s.ID,
			owner,
			s.CreationTime.Format(time.DateTime),
			s.LastAccessedTime.Format(time.DateTime),
			expires,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d session(s)\n", len(list))
	return nil
}
