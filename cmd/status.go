package cmd

import (
	"context"
	"fmt"
	"io"

	"mc-launcher/ui"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active account, profiles and installed mods",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		return printStatus(cmd.Context(), a, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(ctx context.Context, a *app, w io.Writer) error {
	fmt.Fprintln(w, ui.Title.Render("mc-launcher"))
	fmt.Fprintf(w, "  store:    %s\n", a.cfg.StoreBackend)

	id, ok, err := a.identities.MostRecent(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "  account:  %s (%s)\n", id.Username, id.UUID)
	} else {
		fmt.Fprintf(w, "  account:  %s\n", ui.Muted.Render("none, run 'login <username>'"))
	}

	profiles, err := a.profiles.Load(ctx)
	if err != nil {
		return err
	}
	all, err := a.mods.All(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  profiles: %d\n", len(profiles))
	for _, p := range profiles {
		installed, err := a.mods.List(ctx, p.ID, p.Loader)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "    %s %-24s %-8s %-10s %d mods\n",
			p.Icon, truncate(p.Name, 24), p.VersionID, ui.Colorize(string(p.Loader), ui.LoaderColor(string(p.Loader))), len(installed))
	}

	if orphans := countOrphans(profiles, all); orphans > 0 {
		fmt.Fprintln(w, ui.Warning.Render(fmt.Sprintf("  %d mod records belong to deleted profiles", orphans)))
	}
	return nil
}
