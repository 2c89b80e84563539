package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"mc-launcher/identity"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in with an offline username",
	Long: `Creates or refreshes the offline account for username. The player UUID
is derived from the username, so the same name always maps to the same UUID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		id, err := a.identities.Login(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n  id:   %s\n  uuid: %s\n", id.Username, id.ID, id.UUID)
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List known accounts, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		return printAccounts(cmd.Context(), a.identities, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(accountsCmd)
}

func printAccounts(ctx context.Context, store *identity.Store, w io.Writer) error {
	all, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(w, "No accounts yet. Run 'login <username>'.")
		return nil
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastLoginTime.After(all[j].LastLoginTime)
	})
	for _, id := range all {
		fmt.Fprintf(w, "%-16s %s  %s  last login %s\n",
			id.Username, id.UUID, id.LoginType, id.LastLoginTime.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
