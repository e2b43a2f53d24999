package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/suitetecsa/suitetecsa-cli/internal/application"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

var errNoPortalSession = errors.New("no user portal session; run 'suitetecsa portal captcha' and 'suitetecsa portal login' first")

func newPortalCmd(app *app, opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Manage the account on the ETECSA user portal",
	}

	cmd.AddCommand(
		newPortalCaptchaCmd(app, opts),
		newPortalLoginCmd(app, opts),
		newPortalInfoCmd(app, opts),
		newPortalRechargeCmd(app, opts),
		newPortalTransferCmd(app, opts),
		newPortalPasswordCmd(app, opts),
		newPortalEmailPasswordCmd(app, opts),
		newPortalLastsCmd(app, opts),
		newPortalHistoryCmd(app, opts),
	)

	return cmd
}

// portalClient returns a client holding the last persisted user portal session.
func (a *app) portalClient(cmd *cobra.Command, opts *globalOptions) (*application.UserPortalClient, domain.Credentials, error) {
	credentials, err := a.resolveCredentials(cmd.Context(), opts.username)
	if err != nil {
		return nil, domain.Credentials{}, err
	}

	client := a.userPortalClient(credentials)
	if err := client.LoadLastSession(cmd.Context()); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.Credentials{}, errNoPortalSession
		}
		return nil, domain.Credentials{}, err
	}

	return client, credentials, nil
}

func newPortalCaptchaCmd(app *app, opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "captcha",
		Short: "Start a user portal session and save its login captcha",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.resolveCredentials(cmd.Context(), opts.username)
			if err != nil {
				return err
			}

			client := app.userPortalClient(credentials)
			if err := client.InitSession(cmd.Context()); err != nil {
				return err
			}

			image, err := client.Captcha(cmd.Context())
			if err != nil {
				return err
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(image)
				return err
			}
			if err := os.WriteFile(out, image, 0o600); err != nil {
				return fmt.Errorf("write captcha image: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Captcha saved to %s; run 'suitetecsa portal login --captcha CODE'\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "captcha.png", "Captcha image destination (- for stdout)")

	return cmd
}

func newPortalLoginCmd(app *app, opts *globalOptions) *cobra.Command {
	var captchaCode string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the user portal with the captcha code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			if _, err := client.Login(cmd.Context(), captchaCode); err != nil {
				return err
			}

			credit, _ := client.Credit()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in; credit %s\n", credit)
			return nil
		},
	}

	cmd.Flags().StringVar(&captchaCode, "captcha", "", "Code shown on the captcha image")
	_ = cmd.MarkFlagRequired("captcha")

	return cmd
}

func newPortalInfoCmd(app *app, opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the account details of the last portal login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			status := client.Status()
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, status.Account)
			}

			return writeAccountInfo(cmd.OutOrStdout(), client)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func writeAccountInfo(w io.Writer, client *application.UserPortalClient) error {
	accountType, _ := client.AccountType()
	fields := []struct {
		label string
		get   func() (string, bool)
	}{
		{"credit", client.Credit},
		{"time", client.Time},
		{"account type", func() (string, bool) { return domain.AccountClassification(accountType), true }},
		{"service type", client.ServiceType},
		{"block date", client.BlockDate},
		{"delete date", client.DeleteDate},
		{"mail account", client.MailAccount},
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range fields {
		value, ok := field.get()
		if !ok || value == "" {
			value = "n/a"
		}
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", field.label, value)
	}
	return tw.Flush()
}

func newPortalRechargeCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recharge CODE",
		Short: "Top up the account with a recharge code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			if err := client.Recharge(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				return err
			}

			credit, _ := client.Credit()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recharged; credit %s\n", credit)
			return nil
		},
	}
}

func newPortalTransferCmd(app *app, opts *globalOptions) *cobra.Command {
	var amount string
	var target string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer balance to another account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			if err := client.Transfer(cmd.Context(), amount, target); err != nil {
				return err
			}

			credit, _ := client.Credit()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Transferred %s to %s; credit %s\n", amount, target, credit)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	cmd.Flags().StringVar(&target, "to", "", "Destination account")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newPortalPasswordCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "password NEW_PASSWORD",
		Short: "Change the account password and update the stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, credentials, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			if err := client.ChangePassword(cmd.Context(), args[0]); err != nil {
				return err
			}

			credentials.Password = args[0]
			if err := app.credentials.Put(cmd.Context(), credentials); err != nil {
				return fmt.Errorf("password changed but storing it failed: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Account password changed")
			return nil
		},
	}
}

func newPortalEmailPasswordCmd(app *app, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "email-password NEW_PASSWORD",
		Short: "Change the password of the associated mail account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			if err := client.ChangeEmailPassword(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Mail password changed")
			return nil
		},
	}
}

func newPortalLastsCmd(app *app, opts *globalOptions) *cobra.Command {
	var rawAction string
	var large int
	var output string

	cmd := &cobra.Command{
		Use:   "lasts",
		Short: "List the most recent connections, recharges or transfers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			action, err := domain.ParseAction(rawAction)
			if err != nil {
				return err
			}

			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			records, err := client.Lasts(cmd.Context(), action, large)
			if err != nil {
				return err
			}
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, records)
			}

			return writeRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&rawAction, "action", string(domain.ActionConnections), "Record kind: connections, recharges or transfers")
	cmd.Flags().IntVar(&large, "large", domain.DefaultLastsLarge, "Number of records")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func newPortalHistoryCmd(app *app, opts *globalOptions) *cobra.Command {
	var year int
	var month int
	var output string

	cmd := &cobra.Command{
		Use:   "history ACTION",
		Short: "List connections, recharges or transfers of one month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			action, err := domain.ParseAction(args[0])
			if err != nil {
				return err
			}

			client, _, err := app.portalClient(cmd, opts)
			if err != nil {
				return err
			}

			records, err := monthRecords(cmd, client, action, year, month)
			if err != nil {
				return err
			}
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, records)
			}

			return writeRecords(cmd.OutOrStdout(), records)
		},
	}

	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "Year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Month (1-12)")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func monthRecords(cmd *cobra.Command, client *application.UserPortalClient, action domain.Action, year, month int) ([]domain.Record, error) {
	records := []domain.Record{}
	switch action {
	case domain.ActionConnections:
		connections, err := client.Connections(cmd.Context(), year, month)
		if err != nil {
			return nil, err
		}
		for _, connection := range connections {
			records = append(records, connection)
		}
	case domain.ActionRecharges:
		recharges, err := client.Recharges(cmd.Context(), year, month)
		if err != nil {
			return nil, err
		}
		for _, recharge := range recharges {
			records = append(records, recharge)
		}
	case domain.ActionTransfers:
		transfers, err := client.Transfers(cmd.Context(), year, month)
		if err != nil {
			return nil, err
		}
		for _, transfer := range transfers {
			records = append(records, transfer)
		}
	}

	return records, nil
}

func writeRecords(w io.Writer, records []domain.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, record := range records {
		switch r := record.(type) {
		case domain.Connection:
			_, _ = fmt.Fprintf(tw, "%s\t%s\tup %s\tdown %s\t%s\n", r.Start.Format(time.DateTime), r.Duration, r.Upload, r.Download, r.Amount)
		case domain.Recharge:
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date.Format(time.DateOnly), r.Amount, r.Channel, r.Type)
		case domain.Transfer:
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Date.Format(time.DateOnly), r.Amount, r.DestinationAccount)
		}
	}
	return tw.Flush()
}
