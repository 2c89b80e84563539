package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"mc-launcher/apperr"
	"mc-launcher/mods"
	"mc-launcher/pipeline"
	"mc-launcher/profile"
	"mc-launcher/ui"

	"github.com/spf13/cobra"
)

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Manage the mods of a game profile",
	Long: `Manage the mods installed into a game profile. Commands act on the
profile given with --profile, or on the default profile.`,
}

var modListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, p, err := bootstrapWithProfile(cmd)
		if err != nil {
			return err
		}
		list, err := a.mods.List(cmd.Context(), p.ID, p.Loader)
		if err != nil {
			return err
		}
		printMods(cmd.OutOrStdout(), p, list)
		return nil
	},
}

var modInstallCmd = &cobra.Command{
	Use:   "install <file.jar>",
	Short: "Install a local mod jar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, p, err := bootstrapWithProfile(cmd)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read '%s': %w", args[0], err)
		}
		rec, err := a.mods.InstallLocal(cmd.Context(), args[0], data, p.ID, p.Loader)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %s (%s, %s) into %s\n", rec.Name, rec.FileName, rec.HumanSize(), p.Name)
		return nil
	},
}

var modImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Install every mod jar found in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, p, err := bootstrapWithProfile(cmd)
		if err != nil {
			return err
		}
		res, err := importModDir(cmd.Context(), a.mods, args[0], p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d mods into %s, skipped %d\n", res.imported, p.Name, res.skipped)
		return nil
	},
}

var modAddCmd = &cobra.Command{
	Use:   "add <catalog-id>",
	Short: "Download and install a mod from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, p, err := bootstrapWithProfile(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rec, err := addCatalogMod(cmd.Context(), a.mods, args[0], p, func(ev pipeline.Event) {
			fmt.Fprintf(out, "[%3d%%] %s\n", ev.Progress, ev.Status)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Installed %s %s as %s\n", rec.Name, rec.Version, rec.FileName)
		return nil
	},
}

var modEnableCmd = &cobra.Command{
	Use:   "enable <mod-id>",
	Short: "Enable an installed mod",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleMod(cmd, args[0], true)
	},
}

var modDisableCmd = &cobra.Command{
	Use:   "disable <mod-id>",
	Short: "Disable an installed mod without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleMod(cmd, args[0], false)
	},
}

var modRemoveCmd = &cobra.Command{
	Use:   "remove <mod-id>",
	Short: "Remove an installed mod",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		ok, err := a.mods.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "No mod with id %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var modSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the mod catalog",
	Long: `Searches the catalog by name or summary. Results are limited to the
loader given with --loader, or to the loader of the selected profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loaderName, _ := cmd.Flags().GetString("loader")
		var loader profile.Loader
		if loaderName != "" {
			l, err := profile.ParseLoader(loaderName)
			if err != nil {
				return err
			}
			loader = l
		} else {
			_, p, err := bootstrapWithProfile(cmd)
			if err != nil {
				return err
			}
			loader = p.Loader
		}

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		printCatalog(cmd.OutOrStdout(), mods.Search(query, loader))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modCmd)
	modCmd.AddCommand(modListCmd, modInstallCmd, modImportCmd, modAddCmd, modEnableCmd, modDisableCmd, modRemoveCmd, modSearchCmd)
	modCmd.PersistentFlags().StringP("profile", "p", "", "profile id (default profile when empty)")
	modSearchCmd.Flags().String("loader", "", "loader to search for: forge or fabric")
}

func bootstrapWithProfile(cmd *cobra.Command) (*app, profile.Profile, error) {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return nil, profile.Profile{}, err
	}
	id, _ := cmd.Flags().GetString("profile")
	p, err := a.resolveProfile(cmd.Context(), id)
	if err != nil {
		return nil, profile.Profile{}, err
	}
	return a, p, nil
}

func toggleMod(cmd *cobra.Command, id string, enabled bool) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	ok, err := a.mods.SetEnabled(cmd.Context(), id, enabled)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "No mod with id %s\n", id)
		return nil
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mod %s %s\n", id, state)
	return nil
}

// addCatalogMod installs catalog entry id into p. The entry already being
// installed in p is a conflict; other profiles do not matter.
func addCatalogMod(ctx context.Context, registry *mods.Registry, id string, p profile.Profile, onProgress func(pipeline.Event)) (mods.Record, error) {
	entry, ok := mods.Lookup(id)
	if !ok {
		return mods.Record{}, fmt.Errorf("%w: no catalog entry %q, try 'mod search'", apperr.ErrNotFound, id)
	}
	if entry.Loader != p.Loader {
		return mods.Record{}, fmt.Errorf("%w: %s is a %s mod, profile %q uses %s", apperr.ErrValidation, entry.Name, entry.Loader, p.Name, p.Loader)
	}
	has, err := registry.HasCatalogEntry(ctx, p.ID, p.Loader, entry.ID)
	if err != nil {
		return mods.Record{}, err
	}
	if has {
		return mods.Record{}, fmt.Errorf("%w: %s is already installed in profile %q", apperr.ErrConflict, entry.Name, p.Name)
	}
	return registry.InstallRemote(ctx, entry, p.ID, onProgress)
}

func printMods(w io.Writer, p profile.Profile, list []mods.Record) {
	if !p.Loader.SupportsMods() {
		fmt.Fprintf(w, "%s is a vanilla profile, mods are not supported\n", p.Name)
		return
	}
	if len(list) == 0 {
		fmt.Fprintf(w, "No mods installed in %s\n", p.Name)
		return
	}
	for _, m := range list {
		state := ui.Success.Render("enabled ")
		if !m.Enabled {
			state = ui.Muted.Render("disabled")
		}
		fmt.Fprintf(w, "%-26s %s %-30s %-10s %9s  %s\n",
			m.ID, state, truncate(m.DiskFileName(), 30), m.Version, m.HumanSize(), m.Author)
	}
}

func printCatalog(w io.Writer, entries []mods.CatalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching mods")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%-4s %s %-22s %-8s %5s  %s\n", e.ID, e.Icon, e.Name, e.Version, e.Downloads, e.Summary)
	}
}
