package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the review console. Single source of truth; reuse these
// instead of inlining color literals.
var (
	amberGold   = lipgloss.Color("#FFD580") // primary accent, pending state
	mintGreen   = lipgloss.Color("#A8E6CF") // success / resolved states
	softRed     = lipgloss.Color("#FF8A80") // errors and destructive prompts
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(amberGold).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Background(lipgloss.Color("#374151")).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(softRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(softRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amberGold).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mintGreen).
			Padding(0, 1)
)
