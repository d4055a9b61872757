package inspect

import "github.com/charmbracelet/lipgloss"

// Color palette for the inspector UI.
var (
	accentPink  = lipgloss.Color("#FFB3BA") // titles and active tab
	mintGreen   = lipgloss.Color("#A8E6CF") // kept-line highlights
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(accentPink).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(accentPink).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	contentStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	toastStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Italic(true)
)
