package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/mobil-koeln/moko-board/internal/models"
)

// View renders the entire TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	tabs := m.renderTabs()
	statusBar := m.renderStatusBar()

	sections := []string{header, tabs}
	var searchPanel string
	if m.focus == focusSearch || m.focus == focusResults {
		searchPanel = m.renderSearchPanel()
	}

	used := lipgloss.Height(header) + lipgloss.Height(tabs) + lipgloss.Height(statusBar)
	if searchPanel != "" {
		used += lipgloss.Height(searchPanel)
	}
	panelHeight := max(m.height-used, 3)
	panelWidth := max(m.width-2, 20)

	border := stylePanelNormal
	if m.focus == focusBoard {
		border = stylePanelFocused
	}
	boardPanel := border.
		Width(panelWidth).
		Height(panelHeight - 2).
		Render(m.renderDepartureList(panelWidth, panelHeight-2))

	sections = append(sections, boardPanel)
	if searchPanel != "" {
		sections = append(sections, searchPanel)
	}
	sections = append(sections, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title line with the board timestamp.
func (m Model) renderHeader() string {
	title := styleTitle.Render("Abfahrten")
	if m.hasReport {
		title += styleMuted.Render("  Stand " + m.report.GeneratedAt.Format("15:04:05"))
	}
	if m.loading {
		title += "  " + m.spinner.View()
	}
	return " " + title
}

// renderTabs renders one tab per group label, highlighting the selected one.
func (m Model) renderTabs() string {
	groups := m.groups()
	if len(groups) == 0 {
		return styleMuted.Render(" -")
	}

	tabs := make([]string, 0, len(groups))
	for i, label := range groups {
		text := fmt.Sprintf("%s (%d)", label, len(m.report.Result.Group(label)))
		if i == m.groupCursor {
			tabs = append(tabs, styleTabActive.Render(text))
		} else {
			tabs = append(tabs, styleTab.Render(text))
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderDepartureList renders the rows of the selected group.
func (m Model) renderDepartureList(width, height int) string {
	label := m.selectedGroup()
	title := styleHeader.Render(strings.ToUpper(label))
	if label == "" {
		title = styleHeader.Render("DEPARTURES")
	}

	if !m.hasReport {
		return title + "\n" + styleLoading.Render(" Loading departures...")
	}

	deps := m.selectedDepartures()
	if len(deps) == 0 {
		return title + "\n" + styleMuted.Render(" No departures found")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	maxVisible := max(height-2, 1)
	start, end := visibleRange(m.depCursor, len(deps), maxVisible)

	for i := start; i < end; i++ {
		b.WriteString(renderDepartureLine(deps[i], width, i == m.depCursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderDepartureLine renders: TIME IN' LINE DIRECTION STOP DELAY
func renderDepartureLine(dep models.FormattedDeparture, width int, selected bool) string {
	clock := dep.DepartureTime
	if i := strings.LastIndexByte(clock, ' '); i >= 0 {
		clock = clock[i+1:]
	}

	const fixedWidth = 5 + 1 + 4 + 2 + 6 + 2 + 2 + 7 // time, minutes, line, delay and gaps
	remaining := max(width-fixedWidth-4, 10)
	destWidth := remaining * 3 / 5
	stopWidth := remaining - destWidth - 1

	entry := fmt.Sprintf("%s %s  %s  %s %s  %s",
		styleTime.Render(clock),
		styleMinutes.Render(fmt.Sprintf("%3d'", dep.MinutesUntil)),
		styleLine.Render(padRight(truncate(dep.Line, 6), 6)),
		padRight(truncate(dep.Direction, destWidth), destWidth),
		styleStop.Render(padRight(truncate(dep.DepartureStop, stopWidth), stopWidth)),
		formatDelay(dep.DelayDisplay),
	)

	if selected {
		return styleSelected.Render(">") + entry
	}
	return " " + entry
}

// renderSearchPanel renders the stop lookup input and its results.
func (m Model) renderSearchPanel() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Find stop: "))
	b.WriteString(m.searchInput.View())

	switch {
	case m.searchLoading:
		b.WriteString("\n" + m.spinner.View() + styleLoading.Render(" Searching..."))
	case m.searchErr != nil:
		b.WriteString("\n" + styleError.Render(" Error: "+m.searchErr.Error()))
	case len(m.locations) > 0:
		start, end := visibleRange(m.resultCursor, len(m.locations), 5)
		for i := start; i < end; i++ {
			loc := m.locations[i]
			line := fmt.Sprintf("%-10s %s", loc.ID, loc.Name)
			if len(loc.Products) > 0 {
				line += styleMuted.Render("  " + strings.Join(loc.Products, ", "))
			}
			if i == m.resultCursor && m.focus == focusResults {
				b.WriteString("\n" + styleSelected.Render(" > ") + line)
			} else {
				b.WriteString("\n   " + line)
			}
		}
	}

	border := stylePanelNormal
	if m.focus == focusSearch || m.focus == focusResults {
		border = stylePanelFocused
	}
	return border.Width(max(m.width-2, 20)).Render(b.String())
}

// renderStatusBar renders keyboard hints, refresh state and board problems.
func (m Model) renderStatusBar() string {
	var hints string
	switch m.focus {
	case focusSearch:
		hints = "Enter:search  Esc:back  Ctrl+C:quit"
	case focusResults:
		hints = "j/k:navigate  /:search  Esc:back  q:quit"
	default:
		hints = "Tab:next group  j/k:navigate  r:refresh  a:auto-refresh"
		if m.searcher != nil {
			hints += "  /:find stop"
		}
		hints += "  q:quit"
	}

	var state []string
	if m.autoRefresh {
		remaining := max(time.Until(m.nextRefresh).Round(time.Second), 0)
		state = append(state, fmt.Sprintf("auto %s", remaining))
	} else {
		state = append(state, "auto off")
	}
	if n := m.report.Skipped.Total(); n > 0 {
		state = append(state, fmt.Sprintf("%d skipped", n))
	}
	if len(m.report.FailedStops) > 0 {
		state = append(state, "failed: "+strings.Join(m.report.FailedStops, ","))
	}

	return styleStatusBar.Width(m.width).Render(" " + hints + "  | " + strings.Join(state, "  "))
}

// visibleRange calculates the start and end indices for a scrollable list.
func visibleRange(cursor, total, maxVisible int) (int, int) {
	if total <= maxVisible {
		return 0, total
	}

	start := max(cursor-maxVisible/2, 0)
	end := start + maxVisible
	if end > total {
		end = total
		start = max(end-maxVisible, 0)
	}
	return start, end
}

// truncate shortens s to width runes, marking the cut with "~".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if pad := width - utf8.RuneCountInString(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
