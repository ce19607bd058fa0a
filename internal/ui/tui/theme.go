package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Help lipgloss.Style

	Running lipgloss.Style
	Done    lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Help: lipgloss.NewStyle().Faint(true),

		Running: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		Done:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// PlainTheme renders without colors, for non-terminal output.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{
		Help:    s,
		Running: s,
		Done:    s,
		Failed:  s,
		Skipped: s,
	}
}
