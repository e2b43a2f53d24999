package cmd

import (
	"github.com/spf13/cobra"
	"github.com/suitetecsa/suitetecsa-cli/internal/logging"
)

type globalOptions struct {
	username string
	verbose  bool
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "suitetecsa",
		Short:         "Manage Nauta connections and ETECSA user portal accounts",
		Long:          "suitetecsa opens and closes Nauta network sessions, reports credit and remaining time, and drives account operations on the ETECSA user portal from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.username, "user", "u", "", "Account username (default: account.username from config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		logger := logging.New(cmd.ErrOrStderr(), opts.verbose)
		app.logger = &logger
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newUpCmd(app, opts),
		newDownCmd(app, opts),
		newStatusCmd(app, opts),
		newCreditCmd(app, opts),
		newTimeCmd(app, opts),
		newPortalCmd(app, opts),
	)

	return rootCmd
}
