package output

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mobil-koeln/moko-board/internal/models"
)

// TableOptions configures the table output
type TableOptions struct {
	Colors      *Colors
	ShowStop    bool      // print the departure stop column
	GeneratedAt time.Time // printed in the header when set
}

const (
	lineWidth      = 6
	directionWidth = 32
	stopWidth      = 24
)

func (o TableOptions) colors() *Colors {
	if o.Colors == nil {
		return NewColors(ColorNever)
	}
	return o.Colors
}

// RenderBoard renders the grouped board, one block per type label in the
// order the groups first appeared.
func RenderBoard(w io.Writer, result models.AggregateResult, opts TableOptions) {
	c := opts.colors()

	if !opts.GeneratedAt.IsZero() {
		_, _ = fmt.Fprintln(w, c.Muted("Stand %s", opts.GeneratedAt.Format("15:04")))
		_, _ = fmt.Fprintln(w)
	}

	if result.IsEmpty() {
		_, _ = fmt.Fprintln(w, "No departures found.")
		return
	}

	first := true
	for _, label := range result.Order {
		deps := result.Group(label)
		if len(deps) == 0 {
			continue
		}
		if !first {
			_, _ = fmt.Fprintln(w)
		}
		first = false

		_, _ = fmt.Fprintln(w, c.Header("%s", label))
		for _, dep := range deps {
			renderRow(w, c, dep, opts.ShowStop)
		}
	}
}

// renderRow prints: TIME  IN  LINE  DIRECTION  [STOP]  DELAY
func renderRow(w io.Writer, c *Colors, dep models.FormattedDeparture, showStop bool) {
	clock := dep.DepartureTime
	if i := strings.LastIndexByte(clock, ' '); i >= 0 {
		clock = clock[i+1:]
	}

	stop := ""
	if showStop {
		stop = c.Stop("%s", padRight(truncate(dep.DepartureStop, stopWidth), stopWidth)) + "  "
	}

	_, _ = fmt.Fprintf(w, "%s %s  %s  %s  %s%s\n",
		c.Time("%s", clock),
		c.Minutes("%3d'", dep.MinutesUntil),
		c.Line("%s", padRight(truncate(dep.Line, lineWidth), lineWidth)),
		c.Dest("%s", padRight(truncate(dep.Direction, directionWidth), directionWidth)),
		stop,
		c.FormatDelay(dep.DelayDisplay),
	)
}

// RenderLocations renders locations as a formatted list
func RenderLocations(w io.Writer, locations []models.Location, opts TableOptions) {
	if len(locations) == 0 {
		_, _ = fmt.Fprintln(w, "No stations found.")
		return
	}

	c := opts.colors()

	_, _ = fmt.Fprintln(w, c.Header("Found stations:"))
	_, _ = fmt.Fprintln(w)

	for _, loc := range locations {
		_, _ = fmt.Fprintf(w, "  %s\n", c.Line("%s", loc.Name))
		if loc.ID != "" {
			_, _ = fmt.Fprintf(w, "    %s %s\n", c.Muted("ID:"), loc.ID)
		}
		if len(loc.Products) > 0 {
			_, _ = fmt.Fprintf(w, "    %s %s\n", c.Muted("Products:"), strings.Join(loc.Products, ", "))
		}
		if loc.IsStop() {
			_, _ = fmt.Fprintf(w, "    %s - id: %q\n      name: %q\n",
				c.Muted("stations.yaml:"), loc.ID, loc.Name)
		}
		_, _ = fmt.Fprintln(w)
	}
}

// truncate shortens s to at most n runes, marking the cut with "…"
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 1 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-1]) + "…"
}

// padRight pads s with spaces to n runes
func padRight(s string, n int) string {
	if pad := n - utf8.RuneCountInString(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
