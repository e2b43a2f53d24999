package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suitetecsa/suitetecsa-cli/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "suitetecsa %s\n", version.Version)
			return err
		},
	}
}
