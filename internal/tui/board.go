package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"execedge/internal/engine"
)

// RunBoard shows today's habits for userID and lets them be toggled.
func RunBoard(ctx context.Context, svc *engine.Service, userID string, out io.Writer) error {
	m := newBoardModel(ctx, svc, userID)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
