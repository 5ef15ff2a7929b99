package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"execedge/internal/engine"
	"execedge/internal/ui"
)

func newHabitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "habits",
		Short: "List habits and your subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := a.svc.ListHabits(ctx, a.userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconHabit, "Habits"))
			if len(list) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no habits)"))
				return nil
			}
			for _, l := range list {
				mark := ui.Muted.Render("·")
				if l.Subscribed {
					mark = ui.Good.Render("●")
				}
				fmt.Fprintf(out, "%s %-20s %-30s %s %s\n",
					mark,
					l.Habit.ID,
					l.Habit.Title,
					ui.Muted.Render(l.Habit.Category),
					ui.Gold.Render(fmt.Sprintf("+%d", l.Habit.Points)))
			}
			return nil
		},
	}
}

func habitArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("habit id is required")
	}
	return nil
}

func newSubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <habit>",
		Short: "Add a habit to your daily list",
		Args:  habitArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.svc.Subscribe(ctx, a.userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Subscribed to "+args[0]))
			return nil
		},
	}
}

func newUnsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <habit>",
		Short: "Remove a habit from your daily list (history is kept)",
		Args:  habitArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.svc.Unsubscribe(ctx, a.userID, args[0]); err != nil {
				var nf engine.NotFoundError
				if errors.As(err, &nf) {
					return fmt.Errorf("not subscribed to %s", args[0])
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Unsubscribed from "+args[0]))
			return nil
		},
	}
}
