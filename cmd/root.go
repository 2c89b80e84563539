package cmd

import (
	"fmt"
	"os"

	"mc-launcher/apperr"
	"mc-launcher/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "mc-launcher",
	Short: "Offline Minecraft launcher with per-profile mod management",
	Long: `mc-launcher keeps offline player accounts, game profiles and the mods
installed into each profile, and runs the launch sequence for a profile.

Configuration is read from a .env file in the config directory and from
environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing the .env file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorw("Command failed", zap.String("kind", apperr.Kind(err)), zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", apperr.UserMessage(err))
		logger.Sync()
		os.Exit(1)
	}
}
