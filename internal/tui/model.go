package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/moko-board/internal/board"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// BoardBuilder produces one aggregated board per call
type BoardBuilder interface {
	Build(ctx context.Context) (board.Report, error)
}

// LocationSearcher looks up stops by name
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string) ([]models.Location, error)
}

type focusPanel int

const (
	focusBoard focusPanel = iota
	focusSearch
	focusResults
)

// Model is the root Bubble Tea model for the live board.
type Model struct {
	builder  BoardBuilder
	searcher LocationSearcher
	width    int
	height   int

	focus   focusPanel
	spinner spinner.Model

	// Board
	report      board.Report
	hasReport   bool
	loading     bool
	boardSeq    int
	groupCursor int
	depCursor   int

	// Auto-refresh
	autoRefresh bool
	tickGen     int
	lastUpdate  time.Time
	nextRefresh time.Time

	// Stop lookup
	searchInput   textinput.Model
	locations     []models.Location
	resultCursor  int
	searchLoading bool
	searchErr     error
	searchSeq     int
}

// New creates a new TUI model. searcher may be nil, which disables stop lookup.
func New(builder BoardBuilder, searcher LocationSearcher) Model {
	ti := textinput.New()
	ti.Placeholder = "Find stop ID..."
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleLoading

	return Model{
		builder:     builder,
		searcher:    searcher,
		focus:       focusBoard,
		spinner:     sp,
		searchInput: ti,
		autoRefresh: true,
		nextRefresh: time.Now().Add(autoRefreshInterval),
		loading:     true,
	}
}

// Init fetches the first board and starts the refresh timers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		buildBoard(m.builder, m.boardSeq),
		m.spinner.Tick,
		autoRefreshTick(m.tickGen),
		countdownTick(m.tickGen),
	)
}

// groups returns the non-empty group labels in board order.
func (m Model) groups() []string {
	var labels []string
	for _, label := range m.report.Result.Order {
		if len(m.report.Result.Group(label)) > 0 {
			labels = append(labels, label)
		}
	}
	return labels
}

// selectedGroup returns the label under the group cursor, or "".
func (m Model) selectedGroup() string {
	labels := m.groups()
	if m.groupCursor < 0 || m.groupCursor >= len(labels) {
		return ""
	}
	return labels[m.groupCursor]
}

// selectedDepartures returns the rows of the selected group.
func (m Model) selectedDepartures() []models.FormattedDeparture {
	return m.report.Result.Group(m.selectedGroup())
}

// refresh starts a new board build, superseding any in flight.
func (m Model) refresh() (Model, tea.Cmd) {
	m.boardSeq++
	m.loading = true
	return m, tea.Batch(buildBoard(m.builder, m.boardSeq), m.spinner.Tick)
}
