package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"execedge/internal/engine"
	"execedge/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	var lockedOnly bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "Show achievements and progress towards them",
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
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Achievements (%d/%d)", dash.UnlockedCount(), len(dash.Achievements))))
			for _, ach := range dash.Achievements {
				if lockedOnly && ach.Unlocked {
					continue
				}
				d := ach.Definition
				state := ui.ProgressBar(ach.Progress, d.Requirement, 12) + " " + ui.Muted.Render(fmt.Sprintf("%3.0f%%", ach.Percent()))
				if ach.Unlocked {
					state = ui.Good.Render("unlocked")
					if ach.UnlockedAt != nil {
						state += " " + ui.Muted.Render(engine.FormatDay(*ach.UnlockedAt))
					}
				}
				fmt.Fprintf(out, "%s %-24s %-10s %s\n", d.Icon, d.Title, ui.TierText(string(d.Tier)), state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&lockedOnly, "locked", false, "Only show achievements not yet unlocked")
	return cmd
}

func newChallengesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "challenges",
		Short: "Show challenge status",
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
			fmt.Fprintln(out, ui.Heading(ui.IconFlag, "Challenges"))
			if len(dash.Challenges) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
			}
			for _, c := range dash.Challenges {
				fmt.Fprintf(out, "%-24s %s %s %s\n",
					c.Definition.Title,
					ui.ProgressBar(c.Progress, c.Definition.Target, 12),
					ui.ChallengeStatusText(string(c.Status)),
					ui.Muted.Render("deadline "+engine.FormatDay(c.Definition.Deadline)))
			}
			return nil
		},
	}
}
