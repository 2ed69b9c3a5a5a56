package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/matchday/internal/app"
	"github.com/five82/matchday/internal/game"
)

func newDoneCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id>...",
		Short: "Mark tasks as completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return markTasks(cmd, opts, args, true)
		},
	}

	return cmd
}

func newUndoCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <task-id>...",
		Short: "Mark completed tasks as not done",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return markTasks(cmd, opts, args, false)
		},
	}

	return cmd
}

func markTasks(cmd *cobra.Command, opts *app.Options, ids []string, completed bool) error {
	s, styles, err := openSession(opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	out := cmd.OutOrStdout()
	for _, id := range ids {
		task, ok := findTask(s.Store.Snapshot(), id)
		if !ok {
			return fmt.Errorf("unknown task %q", id)
		}
		var changed bool
		if completed {
			changed = s.Store.CompleteTask(id)
		} else {
			changed = s.Store.UncompleteTask(id)
		}
		switch {
		case !changed && completed:
			fmt.Fprintf(out, "%s %s\n", styles.MutedText.Render("Already done:"), task.Title)
		case !changed:
			fmt.Fprintf(out, "%s %s\n", styles.MutedText.Render("Not done yet:"), task.Title)
		case completed:
			fmt.Fprintf(out, "%s %s %s\n", styles.SuccessText.Render("✓"), task.Title, styles.AccentText.Render(fmt.Sprintf("+%d", task.Points)))
		default:
			fmt.Fprintf(out, "%s %s %s\n", styles.WarningText.Render("↺"), task.Title, styles.MutedText.Render(fmt.Sprintf("-%d", task.Points)))
		}
	}
	fmt.Fprintf(out, "%s %d\n", styles.MutedText.Render("Points:"), s.Store.Snapshot().Points)
	return nil
}

func findTask(st game.State, id string) (game.Task, bool) {
	for _, task := range st.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return game.Task{}, false
}

func newClaimCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: fmt.Sprintf("Trade %d points for a trophy", game.RewardCost),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, styles, err := openSession(opts)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if !s.Store.ClaimReward() {
				return fmt.Errorf("need %d points for a trophy, have %d", game.RewardCost, s.Store.Snapshot().Points)
			}
			st := s.Store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styles.SuccessText.Render("🏆 Trophy lifted!"),
				styles.MutedText.Render(fmt.Sprintf("(%d trophies, %d points left)", st.Trophies, st.Points)))
			return nil
		},
	}

	return cmd
}

func newSeizureCmd(opts *app.Options) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "seizure",
		Short: "Log a seizure for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, styles, err := openSession(opts)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			delta := 1
			if remove {
				delta = -1
			}
			today := game.Day(time.Now())
			s.Store.LogSeizure(delta, today)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", styles.MutedText.Render("Seizures today:"), s.Store.Snapshot().SeizuresOn(today))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove one seizure from today's count")

	return cmd
}

func newResetCmd(opts *app.Options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Start a new matchday: archive today's points and reopen every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset archives today's points and clears every task; rerun with --yes")
			}
			s, styles, err := openSession(opts)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			points := s.Store.Snapshot().Points
			s.Store.ResetDailyTasks(game.Day(time.Now()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styles.SuccessText.Render("New matchday"),
				styles.MutedText.Render(fmt.Sprintf("(%d points archived)", points)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")

	return cmd
}
