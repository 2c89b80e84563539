package cmd

import (
	"github.com/spf13/cobra"
)

// defaultCmd represents the command that runs when no subcommand is specified
var defaultCmd = &cobra.Command{
	Use:    "default",
	Short:  "Default command when no subcommand is provided",
	Long:   `Shows the launcher status.`,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(defaultCmd)
	rootCmd.RunE = defaultCmd.RunE
}
