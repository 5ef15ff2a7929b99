package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"execedge/internal/ui"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user with an API token",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := a.auth.CreateUser(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			n, err := a.svc.SubscribeDefaults(ctx, u.ID, role)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "User created"))
			fmt.Fprintln(out, ui.LabelValue("ID", u.ID))
			fmt.Fprintln(out, ui.LabelValue("Token", u.Token))
			fmt.Fprintln(out, ui.LabelValue("Subscribed habits", n))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Subscribe to the habits targeted at this role (ceo|founder|executive|manager)")
	return cmd
}
