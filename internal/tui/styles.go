package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Underline(true)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))
)

func priorityColor(priority string) lipgloss.Style {
	switch priority {
	case "Critical":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	case "High":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case "Medium":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	}
}
