package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shared styles for the CLI and the board.

const (
	IconHabit   = "🔁"
	IconSparkle = "✨"
	IconDone    = "✅"
	IconOpen    = "⬜"
	IconTrophy  = "🏆"
	IconFire    = "🔥"
	IconFlag    = "🏁"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconChart   = "📈"
)

var (
	cPrimary  = lipgloss.Color("63")  // blue
	cAccent   = lipgloss.Color("205") // magenta
	cGood     = lipgloss.Color("42")  // green
	cWarn     = lipgloss.Color("214") // orange
	cBad      = lipgloss.Color("196") // red
	cMuted    = lipgloss.Color("244") // gray
	cGold     = lipgloss.Color("220") // gold
	cBronze   = lipgloss.Color("173")
	cSilver   = lipgloss.Color("250")
	cPlatinum = lipgloss.Color("117")
	cDiamond  = lipgloss.Color("51")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeUnlocked = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("UNLOCKED")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// TierText renders an achievement tier in its metal colour.
func TierText(tier string) string {
	var c lipgloss.Color
	switch strings.ToLower(tier) {
	case "bronze":
		c = cBronze
	case "silver":
		c = cSilver
	case "gold":
		c = cGold
	case "platinum":
		c = cPlatinum
	case "diamond":
		c = cDiamond
	default:
		return Muted.Render(tier)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(tier)
}

func ChallengeStatusText(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return Good.Render("completed")
	case "active":
		return H2.Render("active")
	case "failed":
		return Bad.Render("failed")
	default:
		return Muted.Render(status)
	}
}

func Check(done bool) string {
	if done {
		return IconDone
	}
	return IconOpen
}

// ProgressBar draws value/total as a fixed-width ASCII bar.
func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := value * width / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
