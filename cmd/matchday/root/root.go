package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/matchday/internal/app"
	"github.com/five82/matchday/internal/prefs"
	"github.com/five82/matchday/internal/ui"
)

const Version = "0.1.0"

func newRootCmd() *cobra.Command {
	opts := &app.Options{}

	cmd := &cobra.Command{
		Use:           "matchday",
		Short:         "Matchday: daily habits as a football season",
		Long:          "Matchday tracks daily tasks, points, trophies and seizures in a terminal dashboard, synced to a shared sheet.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), *opts)
		},
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config path (defaults to ~/.config/matchday/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "Prefs path (defaults to ~/.config/matchday/prefs.toml)")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "Disable cloud sync for this run")
	cmd.PersistentFlags().BoolVar(&opts.LogStderr, "log-stderr", false, "Write logs to stderr instead of the log file")

	cmd.AddCommand(
		newStatusCmd(opts),
		newDoneCmd(opts),
		newUndoCmd(opts),
		newClaimCmd(opts),
		newSeizureCmd(opts),
		newResetCmd(opts),
		newSyncCmd(opts),
	)
	return cmd
}

// Execute runs the command line until it finishes or a signal arrives.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		styles := ui.GetTheme(prefs.Defaults().Theme).Styles()
		fmt.Fprintln(os.Stderr, styles.DangerText.Render("✗ "+err.Error()))
		cancel()
		os.Exit(1)
	}
}

// openSession opens the data directory and returns the styles for the
// user's theme. The caller must Close the session.
func openSession(opts *app.Options) (*app.Session, ui.Styles, error) {
	userPrefs, _ := prefs.Load(opts.PrefsPath)
	styles := ui.GetTheme(userPrefs.Theme).Styles()
	s, err := app.Open(*opts)
	if err != nil {
		return nil, styles, err
	}
	return s, styles, nil
}
