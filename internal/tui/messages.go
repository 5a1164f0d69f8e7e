package tui

import (
	"time"

	"github.com/mobil-koeln/moko-board/internal/board"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// autoRefreshTickMsg is sent every refresh interval when auto-refresh is enabled.
// gen ties the tick to the auto-refresh run that scheduled it.
type autoRefreshTickMsg struct {
	gen int
	at  time.Time
}

// countdownTickMsg is sent every second to update the countdown display.
type countdownTickMsg struct {
	gen int
	at  time.Time
}

// boardResultMsg carries a freshly built board. seq is used for stale-result detection.
type boardResultMsg struct {
	seq    int
	report board.Report
	err    error
}

// searchResultMsg carries station search results back to the model.
type searchResultMsg struct {
	seq       int
	locations []models.Location
	err       error
}
