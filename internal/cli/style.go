package cli

import "github.com/charmbracelet/lipgloss"

var styles = struct {
	title  lipgloss.Style
	accent lipgloss.Style
	path   lipgloss.Style
	faint  lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
}{
	title:  lipgloss.NewStyle().Bold(true),
	accent: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	path:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	faint:  lipgloss.NewStyle().Faint(true),
	err:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
}
