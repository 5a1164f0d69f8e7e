package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardResultMsg:
		return m.handleBoardResult(msg)

	case searchResultMsg:
		return m.handleSearchResult(msg)

	case autoRefreshTickMsg:
		return m.handleAutoRefreshTick(msg)

	case countdownTickMsg:
		return m.handleCountdownTick(msg)

	case spinner.TickMsg:
		if !m.loading && !m.searchLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Pass remaining messages to textinput when focused
	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleBoardResult(msg boardResultMsg) (tea.Model, tea.Cmd) {
	// Ignore results superseded by a newer refresh
	if msg.seq != m.boardSeq {
		return m, nil
	}
	m.loading = false

	// A failed build carries an empty board, which replaces the old one
	selected := m.selectedGroup()
	m.report = msg.report
	m.hasReport = true
	m.lastUpdate = time.Now()

	// Stay on the same group if it is still on the board
	m.groupCursor = 0
	for i, label := range m.groups() {
		if label == selected {
			m.groupCursor = i
			break
		}
	}
	if n := len(m.selectedDepartures()); m.depCursor >= n {
		m.depCursor = max(n-1, 0)
	}
	return m, nil
}

func (m Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.searchSeq {
		return m, nil
	}
	m.searchLoading = false
	m.searchErr = msg.err
	if msg.err != nil {
		return m, nil
	}

	m.locations = msg.locations
	m.resultCursor = 0
	if len(m.locations) > 0 {
		m.focus = focusResults
		m.searchInput.Blur()
	}
	return m, nil
}

func (m Model) handleAutoRefreshTick(msg autoRefreshTickMsg) (tea.Model, tea.Cmd) {
	// Ticks from before the last toggle belong to a dead loop
	if !m.autoRefresh || msg.gen != m.tickGen {
		return m, nil
	}
	m.nextRefresh = time.Now().Add(autoRefreshInterval)

	// Keep the current board visible until new data arrives
	var cmd tea.Cmd
	m, cmd = m.refresh()
	return m, tea.Batch(autoRefreshTick(m.tickGen), cmd)
}

func (m Model) handleCountdownTick(msg countdownTickMsg) (tea.Model, tea.Cmd) {
	if !m.autoRefresh || msg.gen != m.tickGen {
		return m, nil
	}
	return m, countdownTick(m.tickGen)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKeys(msg)
	case focusResults:
		return m.handleResultKeys(msg)
	default:
		return m.handleBoardKeys(msg)
	}
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	groups := m.groups()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r":
		return m.refresh()

	case "a":
		m.autoRefresh = !m.autoRefresh
		m.tickGen++
		if !m.autoRefresh {
			return m, nil
		}
		m.nextRefresh = time.Now().Add(autoRefreshInterval)
		var cmd tea.Cmd
		m, cmd = m.refresh()
		return m, tea.Batch(cmd, autoRefreshTick(m.tickGen), countdownTick(m.tickGen))

	case "tab", "l", "right":
		if len(groups) > 0 {
			m.groupCursor = (m.groupCursor + 1) % len(groups)
			m.depCursor = 0
		}
		return m, nil

	case "shift+tab", "h", "left":
		if len(groups) > 0 {
			m.groupCursor = (m.groupCursor - 1 + len(groups)) % len(groups)
			m.depCursor = 0
		}
		return m, nil

	case "j", "down":
		if m.depCursor < len(m.selectedDepartures())-1 {
			m.depCursor++
		}
		return m, nil

	case "k", "up":
		if m.depCursor > 0 {
			m.depCursor--
		}
		return m, nil

	case "/":
		if m.searcher == nil {
			return m, nil
		}
		m.focus = focusSearch
		return m, m.searchInput.Focus()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		m.searchSeq++
		m.searchLoading = true
		m.searchErr = nil
		return m, tea.Batch(searchStations(m.searcher, query, m.searchSeq), m.spinner.Tick)

	case "esc":
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.focus = focusBoard
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.resultCursor < len(m.locations)-1 {
			m.resultCursor++
		}
	case "k", "up":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
	case "/":
		m.focus = focusSearch
		return m, m.searchInput.Focus()
	case "esc":
		m.focus = focusBoard
	case "q":
		return m, tea.Quit
	}
	return m, nil
}
