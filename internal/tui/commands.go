package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	buildTimeout        = 15 * time.Second
	searchTimeout       = 5 * time.Second
	autoRefreshInterval = 30 * time.Second
)

// autoRefreshTick returns a tea.Cmd that sends a tick after the refresh interval.
func autoRefreshTick(gen int) tea.Cmd {
	return tea.Tick(autoRefreshInterval, func(t time.Time) tea.Msg {
		return autoRefreshTickMsg{gen: gen, at: t}
	})
}

// countdownTick returns a tea.Cmd that sends a tick every second.
func countdownTick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg{gen: gen, at: t}
	})
}

// buildBoard returns a tea.Cmd that builds the aggregated board.
func buildBoard(builder BoardBuilder, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
		defer cancel()

		report, err := builder.Build(ctx)
		return boardResultMsg{seq: seq, report: report, err: err}
	}
}

// searchStations returns a tea.Cmd that searches for stops.
func searchStations(searcher LocationSearcher, query string, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		locations, err := searcher.SearchLocations(ctx, query)
		return searchResultMsg{seq: seq, locations: locations, err: err}
	}
}
