package root

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%s %v: %v", cmd.Name(), args, err)
	}
	return out.String()
}

func TestToggleFlow(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))

	runCmd(t, newMigrateCmd())
	runCmd(t, newSubscribeCmd(), "morning_intention")

	out := runCmd(t, newToggleCmd(), "morning_intention", "--note", "clear head")
	if !strings.Contains(out, "Done") {
		t.Fatalf("toggle output missing Done:\n%s", out)
	}
	if !strings.Contains(out, "Perfect Day") {
		t.Fatalf("expected Perfect Day unlock:\n%s", out)
	}

	out = runCmd(t, newToggleCmd(), "morning_intention")
	if !strings.Contains(out, "Undone") {
		t.Fatalf("second toggle should undo:\n%s", out)
	}

	out = runCmd(t, newAchievementsCmd())
	if !strings.Contains(out, "unlocked") {
		t.Fatalf("achievements output:\n%s", out)
	}
}

func TestToggleRejectsBadDate(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))

	cmd := newToggleCmd()
	cmd.SetArgs([]string{"morning_intention", "--date", "someday"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for bad date")
	}
}
