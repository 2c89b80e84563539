package cmd

import (
	"fmt"
	"io"

	"mc-launcher/mojang"
	"mc-launcher/ui"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List published game versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		versionType, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		manifest, err := a.client.FetchVersionManifest(cmd.Context())
		if err != nil {
			return err
		}
		printVersions(cmd.OutOrStdout(), manifest, versionType, limit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().String("type", "release", "version type: release, snapshot, old_beta, old_alpha, or empty for all")
	versionsCmd.Flags().Int("limit", 20, "maximum number of versions to show, 0 for all")
}

func printVersions(w io.Writer, m *mojang.Manifest, versionType string, limit int) {
	fmt.Fprintf(w, "Latest release %s, snapshot %s\n", ui.Success.Render(m.Latest.Release), m.Latest.Snapshot)
	versions := m.Filter(versionType)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	for _, v := range versions {
		fmt.Fprintf(w, "  %-20s %-10s %s\n", v.ID, v.Type, v.ReleaseTime.Format("2006-01-02"))
	}
}
