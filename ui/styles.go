package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the lipgloss styles used in the UI
type Styles struct {
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	MediaTitle   lipgloss.Style
	MenuItem     lipgloss.Style
	SelectedItem lipgloss.Style
	Info         lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Prompt       lipgloss.Style
	Border       lipgloss.Style
	Help         lipgloss.Style
	StatusBar    lipgloss.Style
	TimeDisplay  lipgloss.Style
	Indicator    lipgloss.Style
}

// DefaultStyles returns the default styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E06C75")). // Red accent
			Padding(0, 1),

		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF")).
			Padding(0, 1),

		MediaTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5C07B")). // Gold
			Padding(0, 1),

		MenuItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D0D0D0")).
			Padding(0, 2),

		SelectedItem: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#E06C75")).
			Padding(0, 2),

		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#61AFEF")). // Blue
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E06C75")).
			Padding(0, 1),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98C379")). // Green
			Padding(0, 1),

		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Padding(0, 1),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E06C75")).
			Padding(1, 2),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#E06C75")).
			Padding(0, 1),

		TimeDisplay: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF")),

		Indicator: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D0D0D0")).
			Background(lipgloss.Color("#3E4452")).
			Padding(0, 1),
	}
}
