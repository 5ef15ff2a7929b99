package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"execedge/internal/ui"
)

const Version = "0.1.0"

var userFlag string

var rootCmd = &cobra.Command{
	Use:           "execedge",
	Short:         "ExecEdge: daily leadership habits, streaks and achievements",
	Long:          "ExecEdge tracks daily habit completions and derives streaks, points, achievements and challenge progress from them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User id to act as (default $EXECEDGE_USER)")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newUserCmd(),
		newHabitsCmd(),
		newSubscribeCmd(),
		newUnsubscribeCmd(),
		newToggleCmd(),
		newRecomputeCmd(),
		newStatusCmd(),
		newAchievementsCmd(),
		newChallengesCmd(),
		newBoardCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
