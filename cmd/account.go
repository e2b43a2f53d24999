package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the stored account credentials",
	}

	cmd.AddCommand(
		newAccountSetCmd(app),
		newAccountRemoveCmd(app),
	)

	return cmd
}

func newAccountSetCmd(app *app) *cobra.Command {
	var password string
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "set USERNAME",
		Short: "Store the password of an account",
		Long:  "Store the password of an account in pass, falling back to ~/.suitetecsa/secrets. Without --password the first line of stdin is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if password == "" {
				read, err := readPasswordLine(cmd)
				if err != nil {
					return err
				}
				password = read
			}

			if err := app.credentials.Put(cmd.Context(), domain.Credentials{Username: username, Password: password}); err != nil {
				return fmt.Errorf("store credentials: %w", err)
			}

			if makeDefault {
				if err := app.saveDefaultAccount(username); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored credentials for %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password (default: read from stdin)")
	cmd.Flags().BoolVar(&makeDefault, "default", true, "Use this account when --user is not given")

	return cmd
}

func newAccountRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove USERNAME",
		Short: "Forget the password of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if err := app.credentials.Delete(cmd.Context(), username); err != nil {
				return fmt.Errorf("remove credentials: %w", err)
			}

			if app.config.GetString(accountUsernameKey) == username {
				if err := app.saveDefaultAccount(""); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for %s\n", username)
			return nil
		},
	}
}

func (a *app) saveDefaultAccount(username string) error {
	a.config.Set(accountUsernameKey, username)

	if err := os.MkdirAll(filepath.Dir(a.configPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := a.config.WriteConfigAs(a.configPath); err != nil {
		return fmt.Errorf("write config %s: %w", a.configPath, err)
	}

	return nil
}

func readPasswordLine(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("password is required: pass --password or provide it on stdin")
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}

	return password, nil
}
