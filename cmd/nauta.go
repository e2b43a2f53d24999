package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	statusadapter "github.com/suitetecsa/suitetecsa-cli/internal/adapters/render/status"
	"github.com/suitetecsa/suitetecsa-cli/internal/application"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

const expiryWarning = 7 * 24 * time.Hour

func newUpCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Open a Nauta network session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.resolveCredentials(cmd.Context(), opts.username)
			if err != nil {
				return err
			}
			client := app.nautaClient(credentials)

			loggedIn, err := client.IsLoggedIn(cmd.Context())
			if err != nil {
				return err
			}
			if loggedIn {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Already connected; run 'suitetecsa down' first")
				return nil
			}

			if _, err := withSpinner(cmd.Context(), cmd.ErrOrStderr(), "Connecting to Nauta...", client.Login); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Connected as %s\n", credentials.Username)
			return nil
		},
	}
}

func newDownCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Close the open Nauta network session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.resolveCredentials(cmd.Context(), opts.username)
			if err != nil {
				return err
			}
			client := app.nautaClient(credentials)

			loaded, err := app.loadLoggedInSession(cmd.Context(), client)
			if err != nil {
				return err
			}
			if !loaded {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not connected")
				return nil
			}

			_, err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), "Disconnecting...", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, client.Logout(ctx)
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
			return nil
		},
	}
}

func newStatusCmd(app *app, opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connection state, credit and remaining time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.resolveCredentials(cmd.Context(), opts.username)
			if err != nil {
				return err
			}
			client := app.nautaClient(credentials)
			if _, err := app.loadLoggedInSession(cmd.Context(), client); err != nil {
				return err
			}

			status, err := withSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching account status...", client.Status)
			if err != nil {
				return err
			}

			if err := app.mergePortalAccount(cmd.Context(), &status); err != nil {
				return err
			}

			return writeStatusesOutput(cmd, app, []application.AccountStatus{status}, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func newCreditCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "credit",
		Short: "Print the available account credit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.resolveCredentials(cmd.Context(), opts.username)
			if err != nil {
				return err
			}
			client := app.nautaClient(credentials)
			if _, err := app.loadLoggedInSession(cmd.Context(), client); err != nil {
				return err
			}

			credit, err := client.UserCredit(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), credit)
			return err
		},
	}
}

func newTimeCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "time",
		Short: "Print the remaining connection time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.resolveCredentials(cmd.Context(), opts.username)
			if err != nil {
				return err
			}
			client := app.nautaClient(credentials)
			if _, err := app.loadLoggedInSession(cmd.Context(), client); err != nil {
				return err
			}

			remaining, err := client.RemainingTime(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), remaining)
			return err
		},
	}
}

// loadLoggedInSession hands the persisted Nauta session to client when it is
// logged in. A leftover session that never logged in is deleted instead, so
// queries fall back to an ephemeral session and down has nothing to close.
func (a *app) loadLoggedInSession(ctx context.Context, client *application.NautaClient) (bool, error) {
	session, err := a.sessions.Load(ctx, domain.PortalNauta)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load nauta session: %w", err)
	}

	if !session.LoggedIn() {
		if err := a.sessions.Delete(ctx, domain.PortalNauta); err != nil {
			return false, fmt.Errorf("discard stale nauta session: %w", err)
		}
		return false, nil
	}

	if err := client.LoadLastSession(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// mergePortalAccount fills account details known from the last user portal login.
func (a *app) mergePortalAccount(ctx context.Context, status *application.AccountStatus) error {
	session, err := a.sessions.Load(ctx, domain.PortalUser)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("load user portal session: %w", err)
	}
	if session.Account.Username != "" && session.Account.Username != status.Username {
		return nil
	}

	credit, remaining := status.Credit, status.RemainingTime
	status.Account = session.Account
	status.Account.Credit = credit
	status.Account.Time = remaining
	return nil
}

func writeStatusesOutput(cmd *cobra.Command, app *app, statuses []application.AccountStatus, output string) error {
	if output != outputText {
		return writeStructured(cmd.OutOrStdout(), output, statuses)
	}

	rendered, err := app.statusRenderer(statuses, statusadapter.RenderOptions{
		Now:        app.now(),
		WarnBefore: expiryWarning,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
