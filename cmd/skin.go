package cmd

import (
	"context"
	"fmt"
	"os"

	"mc-launcher/identity"
	"mc-launcher/skin"

	"github.com/spf13/cobra"
)

var skinCmd = &cobra.Command{
	Use:   "skin",
	Short: "Manage account skins",
}

var skinSetCmd = &cobra.Command{
	Use:   "set <username> <skin.png>",
	Short: "Use a local PNG as the skin of an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read '%s': %w", args[1], err)
		}
		storage, err := a.skinStorage(cmd.Context())
		if err != nil {
			return err
		}
		model, _ := cmd.Flags().GetString("model")
		id, format, err := applySkin(cmd.Context(), a.identities, storage, args[0], data, model)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Skin of %s set (%s, %s): %s\n", id.Username, format, id.SkinModel, id.SkinURL)
		return nil
	},
}

var skinImportCmd = &cobra.Command{
	Use:   "import <username> [source-username]",
	Short: "Copy a published skin onto an account",
	Long: `Downloads the skin published for source-username (or username itself)
and stores it as the skin of the local account username.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		source := args[0]
		if len(args) == 2 {
			source = args[1]
		}
		data, err := a.client.FetchSkin(cmd.Context(), source)
		if err != nil {
			return err
		}
		storage, err := a.skinStorage(cmd.Context())
		if err != nil {
			return err
		}
		model, _ := cmd.Flags().GetString("model")
		id, format, err := applySkin(cmd.Context(), a.identities, storage, args[0], data, model)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported skin of %s onto %s (%s): %s\n", source, id.Username, format, id.SkinURL)
		fmt.Fprintf(cmd.OutOrStdout(), "Avatar: %s\n", a.client.AvatarURL(source, 64))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skinCmd)
	skinCmd.AddCommand(skinSetCmd, skinImportCmd)
	skinCmd.PersistentFlags().String("model", identity.SkinClassic, "skin model: classic or slim")
}

// applySkin validates data, stores it and records the reference on username.
// Nothing is stored when validation fails.
func applySkin(ctx context.Context, identities *identity.Store, storage skin.Storage, username string, data []byte, model string) (identity.Identity, skin.Format, error) {
	if err := identity.ValidateUsername(username); err != nil {
		return identity.Identity{}, "", err
	}
	model, err := identity.ValidateSkinModel(model)
	if err != nil {
		return identity.Identity{}, "", err
	}
	format, err := skin.Validate(data)
	if err != nil {
		return identity.Identity{}, "", err
	}
	ref, err := storage.Put(ctx, username, data)
	if err != nil {
		return identity.Identity{}, "", err
	}
	id, err := identities.SetSkin(ctx, username, ref, model)
	if err != nil {
		return identity.Identity{}, "", err
	}
	return id, format, nil
}
