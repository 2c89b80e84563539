package cmd

import (
	"context"
	"fmt"
	"io"

	"mc-launcher/logger"
	"mc-launcher/mods"
	"mc-launcher/profile"
	"mc-launcher/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage game profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List game profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		return printProfiles(cmd.Context(), a.profiles, cmd.OutOrStdout())
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a game profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		version, _ := cmd.Flags().GetString("version")
		loaderName, _ := cmd.Flags().GetString("loader")
		loader, err := profile.ParseLoader(loaderName)
		if err != nil {
			return err
		}
		p, err := a.profiles.Create(cmd.Context(), args[0], version, loader)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s %q (%s %s)\n", p.ID, p.Name, p.VersionID, p.Loader)
		return nil
	},
}

var profileDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a game profile under a new id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		dup, ok, err := a.profiles.Duplicate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "No profile with id %s, nothing to duplicate\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s %q\n", dup.ID, dup.Name)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a game profile and, unless kept, its mod records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		keep, _ := cmd.Flags().GetBool("keep-mods")
		return deleteProfile(cmd.Context(), a.profiles, a.mods, args[0], keep || a.cfg.KeepOrphanedMods, cmd.OutOrStdout())
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Change launch settings of a game profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		set := settingsFromFlags(cmd)
		p, ok, err := a.profiles.Update(cmd.Context(), args[0], set)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "No profile with id %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: ram %d-%dG, %dx%d, java %s, args %q\n",
			p.Name, p.RAMMin, p.RAMMax, p.ResolutionW, p.ResolutionH, p.JavaPath, p.JVMArgs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileDuplicateCmd, profileDeleteCmd, profileSetCmd)

	profileCreateCmd.Flags().String("version", profile.DefaultVersion, "game version id")
	profileCreateCmd.Flags().String("loader", string(profile.Vanilla), "mod loader: vanilla, forge or fabric")

	profileDeleteCmd.Flags().Bool("keep-mods", false, "keep the profile's mod records instead of purging them")

	profileSetCmd.Flags().String("java", "", "java executable")
	profileSetCmd.Flags().Int("ram-min", 0, "minimum memory in GB")
	profileSetCmd.Flags().Int("ram-max", 0, "maximum memory in GB")
	profileSetCmd.Flags().String("jvm-args", "", "extra JVM arguments")
	profileSetCmd.Flags().Int("width", 0, "window width")
	profileSetCmd.Flags().Int("height", 0, "window height")
}

// settingsFromFlags keeps only the flags the user actually passed.
func settingsFromFlags(cmd *cobra.Command) profile.Settings {
	var set profile.Settings
	flags := cmd.Flags()
	if flags.Changed("java") {
		v, _ := flags.GetString("java")
		set.JavaPath = &v
	}
	if flags.Changed("ram-min") {
		v, _ := flags.GetInt("ram-min")
		set.RAMMin = &v
	}
	if flags.Changed("ram-max") {
		v, _ := flags.GetInt("ram-max")
		set.RAMMax = &v
	}
	if flags.Changed("jvm-args") {
		v, _ := flags.GetString("jvm-args")
		set.JVMArgs = &v
	}
	if flags.Changed("width") {
		v, _ := flags.GetInt("width")
		set.ResolutionW = &v
	}
	if flags.Changed("height") {
		v, _ := flags.GetInt("height")
		set.ResolutionH = &v
	}
	return set
}

func printProfiles(ctx context.Context, store *profile.Store, w io.Writer) error {
	all, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(w, "No profiles. Create one with 'profile create <name>'.")
		return nil
	}
	for _, p := range all {
		played := "never"
		if !p.LastPlayed.IsZero() {
			played = p.LastPlayed.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s %-36s %-24s %-8s %-10s played %s\n",
			p.Icon, p.ID, truncate(p.Name, 24), p.VersionID,
			ui.Colorize(string(p.Loader), ui.LoaderColor(string(p.Loader))), played)
	}
	return nil
}

// deleteProfile removes a profile. Its mod records are purged unless keepMods.
func deleteProfile(ctx context.Context, profiles *profile.Store, registry *mods.Registry, id string, keepMods bool, w io.Writer) error {
	ok, err := profiles.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "No profile with id %s, nothing deleted\n", id)
		return nil
	}
	fmt.Fprintf(w, "Deleted profile %s\n", id)

	if keepMods {
		logger.Log.Infow("Keeping mod records of deleted profile", zap.String("profile", id))
		return nil
	}
	n, err := registry.PurgeProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("profile deleted but its mods could not be purged: %w", err)
	}
	if n > 0 {
		fmt.Fprintf(w, "Removed %d mod records\n", n)
	}
	return nil
}

func countOrphans(profiles []profile.Profile, records []mods.Record) int {
	known := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		known[p.ID] = true
	}
	n := 0
	for _, r := range records {
		if !known[r.ProfileID] {
			n++
		}
	}
	return n
}
