package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors matching the output package scheme
var (
	colorCyan    = lipgloss.Color("6")  // lines
	colorYellow  = lipgloss.Color("3")  // minor delays, minutes
	colorRed     = lipgloss.Color("1")  // major delays, errors
	colorGreen   = lipgloss.Color("2")  // on time
	colorMagenta = lipgloss.Color("5")  // stops
	colorWhite   = lipgloss.Color("15") // times, text
	colorGray    = lipgloss.Color("8")  // muted text
)

// Text styles
var (
	styleTime      = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleMinutes   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleDelay     = lipgloss.NewStyle().Foreground(colorYellow)
	styleDelayHigh = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleOnTime    = lipgloss.NewStyle().Foreground(colorGreen)
	styleLine      = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleStop      = lipgloss.NewStyle().Foreground(colorMagenta)
	styleMuted     = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader    = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleTitle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// Panel border styles
var (
	stylePanelFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan)

	stylePanelNormal = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray)
)

// Group tabs
var (
	styleTab = lipgloss.NewStyle().
			Foreground(colorGray).
			Padding(0, 1)

	styleTabActive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(colorCyan).
			Bold(true).
			Padding(0, 1)
)

// Selected item in a list
var styleSelected = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

// Status bar at the bottom
var styleStatusBar = lipgloss.NewStyle().
	Foreground(colorGray).
	Background(lipgloss.Color("0"))

// Loading indicator
var styleLoading = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)

// Error text
var styleError = lipgloss.NewStyle().Foreground(colorRed)

const highDelayMinutes = 5

// formatDelay styles a delay display string ("On Time", "3 min") at 7 chars
func formatDelay(display string) string {
	s := padRight(display, 7)
	n, unit, found := strings.Cut(display, " ")
	if !found || unit != "min" {
		return styleOnTime.Render(s)
	}
	minutes, err := strconv.Atoi(n)
	switch {
	case err != nil || minutes <= 0:
		return styleOnTime.Render(s)
	case minutes >= highDelayMinutes:
		return styleDelayHigh.Render(s)
	default:
		return styleDelay.Render(s)
	}
}
