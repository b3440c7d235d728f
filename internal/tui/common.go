package tui

import "github.com/charmbracelet/lipgloss"

// Color palette matching existing fatih/color usage
var (
	// ColorGreen for cached items and success indicators
	ColorGreen = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}

	// ColorCyan for metadata
	ColorCyan = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}

	// ColorWhite for primary text
	ColorWhite = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}

	// ColorGray for secondary text and help
	ColorGray = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}

	// ColorYellow for warnings and highlights
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}

	// ColorRed for alerts
	ColorRed = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}

	ColorOrange    = lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FF8700"}
	ColorTealLight = lipgloss.AdaptiveColor{Light: "#008787", Dark: "#5FD7D7"}
)

// Reusable styles
var (
	// StyleNormal is the base style for regular text
	StyleNormal = lipgloss.NewStyle().Foreground(ColorWhite)

	// StyleHighlight is for selected items
	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	// StyleCached is for downloaded indicators
	StyleCached = lipgloss.NewStyle().Foreground(ColorGreen)

	// StyleTag is for authors and page numbers
	StyleTag = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleHelp is for help text and hints
	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	// StyleHeader is for section headers
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	// StyleError is for alert titles
	StyleError = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	// StyleBorder is for borders and separators
	StyleBorder = lipgloss.NewStyle().
			Foreground(ColorGray).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)

// Reading pane styles. Night mode swaps to light text on a dark page.
var (
	stylePageDay = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1C1C1C")).
			Background(lipgloss.Color("#F5F0E6")).
			Padding(1, 4)

	stylePageNight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D0D0D0")).
			Background(lipgloss.Color("#121212")).
			Padding(1, 4)
)

// PageStyle returns the reading pane style for night or day mode.
func PageStyle(night bool) lipgloss.Style {
	if night {
		return stylePageNight
	}
	return stylePageDay
}

// outerStyle gives every screen the same floating margin.
var outerStyle = lipgloss.NewStyle().Padding(1, 2)

// titleStyle is the banner at the top of each screen.
var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("86")).
	Padding(0, 1)
