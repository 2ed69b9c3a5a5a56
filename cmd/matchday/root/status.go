package root

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/matchday/internal/app"
	"github.com/five82/matchday/internal/game"
	"github.com/five82/matchday/internal/ui"
)

func newStatusCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's tasks, points and trophies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, styles, err := openSession(opts)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			printStatus(cmd, styles, s.Store.Snapshot(), time.Now())
			return nil
		},
	}

	return cmd
}

func printStatus(cmd *cobra.Command, styles ui.Styles, st game.State, now time.Time) {
	out := cmd.OutOrStdout()
	today := game.Day(now)
	done, total := st.Progress()

	fmt.Fprintln(out, styles.Logo.Render("⚽ Matchday "+today))
	fmt.Fprintf(out, "%s %s  %s %s\n",
		styles.MutedText.Render("Points:"), styles.AccentText.Render(fmt.Sprintf("%d", st.Points)),
		styles.MutedText.Render("Trophies:"), styles.WarningText.Render(fmt.Sprintf("🏆 %d", st.Trophies)))
	fmt.Fprintf(out, "%s %d/%d\n", styles.MutedText.Render("Progress:"), done, total)
	fmt.Fprintf(out, "%s %d\n", styles.MutedText.Render("Seizures today:"), st.SeizuresOn(today))
	fmt.Fprintf(out, "%s %s\n", styles.MutedText.Render("Last synced:"), lastSynced(st.LastSynced, now))
	if st.CanClaim() {
		fmt.Fprintln(out, styles.SuccessText.Render("A trophy is ready to claim"))
	}

	for _, tod := range game.TimesOfDay {
		tasks := st.TasksFor(tod)
		if len(tasks) == 0 {
			continue
		}
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, styles.AccentText.Bold(true).Render(strings.ToUpper(string(tod))))
		for _, task := range tasks {
			mark := styles.FaintText.Render("[ ]")
			if task.Completed {
				mark = styles.SuccessText.Render("[x]")
			}
			fmt.Fprintf(out, "%s %s %s %s\n", mark, task.Title,
				styles.CategoryStyle(task.Category).Render(fmt.Sprintf("+%d", task.Points)),
				styles.FaintText.Render(task.ID))
		}
	}
}

func lastSynced(at *time.Time, now time.Time) string {
	if at == nil {
		return "never"
	}
	return at.Local().Format("2006-01-02 15:04") + " (" + now.Sub(*at).Round(time.Minute).String() + " ago)"
}
