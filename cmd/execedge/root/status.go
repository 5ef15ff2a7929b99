package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"execedge/internal/engine"
	"execedge/internal/storage"
	"execedge/internal/ui"
)

func printSnapshot(out io.Writer, s storage.Snapshot) {
	fmt.Fprintln(out, ui.LabelValue("Total points", s.TotalPoints))
	fmt.Fprintln(out, ui.LabelValue(ui.IconFire+" Current streak", s.CurrentStreak))
	fmt.Fprintln(out, ui.LabelValue("Longest streak", s.LongestStreak))
	fmt.Fprintln(out, ui.LabelValue("Completed today", s.CompletedToday))
	fmt.Fprintln(out, ui.LabelValue("Completed this week", s.CompletedThisWeek))
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progress and today's habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			dash, err := a.svc.Dashboard(ctx, a.userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Progress for "+engine.FormatDay(dash.Today)))
			printSnapshot(out, dash.Snapshot)
			fmt.Fprintln(out, ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", dash.UnlockedCount(), len(dash.Achievements))))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Today"))
			if len(dash.Habits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no subscribed habits; see `execedge habits`)"))
				return nil
			}
			for _, h := range dash.Habits {
				fmt.Fprintf(out, "%s %-30s %s %d %s\n",
					ui.Check(h.CompletedToday),
					h.Habit.Title,
					ui.IconFire, h.Streak,
					ui.Muted.Render(fmt.Sprintf("(%d this week)", h.WeeklyCount)))
			}
			return nil
		},
	}
}

func newRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild the progress snapshot from the completion log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := a.svc.RecomputeSnapshot(ctx, a.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Snapshot rebuilt"))
			printSnapshot(out, res.Snapshot)
			for _, ach := range res.NewAchievements {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeUnlocked, ui.IconTrophy+" "+ach.Definition.Title)
			}
			return nil
		},
	}
}
