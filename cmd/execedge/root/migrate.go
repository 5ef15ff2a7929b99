package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"execedge/internal/ui"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and load the habit catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Good.Render(ui.IconDone+" Schema ready"))
			fmt.Fprintln(out, ui.LabelValue("Backend", a.cfg.Backend))
			fmt.Fprintln(out, ui.LabelValue("Habits", len(a.svc.Catalog().Habits)))
			fmt.Fprintln(out, ui.LabelValue("Achievements", len(a.svc.Catalog().Achievements)))
			fmt.Fprintln(out, ui.LabelValue("Challenges", len(a.svc.Catalog().Challenges)))
			return nil
		},
	}
}
