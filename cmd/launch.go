package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"mc-launcher/logger"
	"mc-launcher/profile"
	"mc-launcher/session"
	"mc-launcher/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a game profile",
	Long: `Runs the launch sequence for a profile with the most recent account,
or the account given with --user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		profileID, _ := cmd.Flags().GetString("profile")
		username, _ := cmd.Flags().GetString("user")
		plain, _ := cmd.Flags().GetBool("plain")

		id, err := a.resolveIdentity(ctx, username)
		if err != nil {
			return err
		}
		p, err := a.resolveProfile(ctx, profileID)
		if err != nil {
			return err
		}

		s := a.newSession()
		s.Login(id)
		s.SelectProfile(p)

		if plain {
			err = launchPlain(ctx, s, cmd.OutOrStdout())
		} else {
			err = launchTUI(ctx, s)
		}
		if err != nil {
			return err
		}

		if _, err := a.profiles.MarkPlayed(ctx, p.ID); err != nil {
			logger.Log.Warnw("Failed to record last played time", zap.String("profile", p.ID), zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().StringP("profile", "p", "", "profile id (default profile when empty)")
	launchCmd.Flags().StringP("user", "u", "", "account username (most recent account when empty)")
	launchCmd.Flags().Bool("plain", false, "print log lines instead of the interactive progress view")
}

// launchPlain runs the launch writing one line per update.
func launchPlain(ctx context.Context, s *session.Session, w io.Writer) error {
	err := s.Launch(ctx, func(u session.Update) {
		if u.Log != nil {
			fmt.Fprintf(w, "%s %s %s\n", u.Log.Time.Format("15:04:05"), ui.Level(string(u.Log.Level)), u.Log.Message)
		}
		if u.State == session.Running {
			fmt.Fprintln(w, ui.Success.Render(u.Status))
		}
	})
	return err
}

func launchTUI(ctx context.Context, s *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := initialLaunchModel(profileLabel(s.Snapshot().Profile))
	done := make(chan error, 1)
	go func() {
		defer close(m.progressChan)
		done <- s.Launch(ctx, func(u session.Update) {
			m.progressChan <- LaunchProgressMsg{Update: u}
		})
	}()

	if _, err := tea.NewProgram(m).Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("failed to run launch view: %w", err)
	}
	// Quitting the view early abandons the launch
	cancel()
	return <-done
}

func profileLabel(p profile.Profile) string {
	return fmt.Sprintf("%s %s (%s %s)", p.Icon, p.Name, p.VersionID, ui.Colorize(string(p.Loader), ui.LoaderColor(string(p.Loader))))
}
