package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/matchday/internal/app"
	"github.com/five82/matchday/internal/cloud"
)

func newSyncCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the cloud document, merge it and push the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, styles, err := openSession(opts)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ctx := cmd.Context()
			if err := s.Sync(ctx); err != nil {
				if errors.Is(err, cloud.ErrDisabled) {
					return errors.New("cloud sync is not configured (set sync_url or MATCHDAY_SYNC_URL)")
				}
				return fmt.Errorf("pull: %w", err)
			}
			if err := s.Push(ctx); err != nil {
				return fmt.Errorf("push: %w", err)
			}

			st := s.Store.Snapshot()
			done, total := st.Progress()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styles.SuccessText.Render("✓ Synced"),
				styles.MutedText.Render(fmt.Sprintf("(%d/%d tasks, %d points, %d events)", done, total, st.Points, len(st.CalendarEvents))))
			return nil
		},
	}

	return cmd
}
