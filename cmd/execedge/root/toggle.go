package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"execedge/internal/engine"
	"execedge/internal/ui"
)

func newToggleCmd() *cobra.Command {
	var date string
	var note string

	cmd := &cobra.Command{
		Use:   "toggle <habit>",
		Short: "Mark a habit done for a day, or undo it",
		Args:  habitArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := engine.ParseDate(date, a.svc.Today())
			if err != nil {
				return err
			}
			in := engine.ToggleInput{HabitID: args[0], Date: &d}
			if n := strings.TrimSpace(note); n != "" {
				in.Note = &n
			}

			res, err := a.svc.ToggleCompletion(ctx, a.userID, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Action == engine.ActionCompleted {
				fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Done"), res.HabitID, ui.Gold.Render(fmt.Sprintf("+%d pts", res.PointsEarned)))
			} else {
				fmt.Fprintf(out, "%s %s %s\n", ui.Warn.Render("Undone"), res.HabitID, ui.Muted.Render(fmt.Sprintf("-%d pts", res.PointsLost)))
			}
			fmt.Fprintln(out, ui.LabelValue("Date", engine.FormatDay(res.Date)))
			fmt.Fprintln(out, ui.LabelValue(ui.IconFire+" Streak", res.Snapshot.CurrentStreak))
			fmt.Fprintln(out, ui.LabelValue("Total points", res.Snapshot.TotalPoints))
			for _, ach := range res.NewAchievements {
				fmt.Fprintf(out, "%s %s %s\n", ui.BadgeUnlocked, ui.IconTrophy+" "+ach.Definition.Title, ui.TierText(string(ach.Definition.Tier)))
			}
			for _, c := range res.ChallengeUpdates {
				if c.Status.IsTerminal() {
					fmt.Fprintf(out, "%s %s %s\n", ui.IconFlag, c.Definition.Title, ui.ChallengeStatusText(string(c.Status)))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Day to toggle (today|yesterday|YYYY-MM-DD)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note stored with the completion")
	return cmd
}
