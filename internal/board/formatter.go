package board

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TimeLayout is the display format for departure timestamps
const TimeLayout = "2006-01-02 15:04"

// OnTime is shown when no delay is reported
const OnTime = "On Time"

// DefaultLogo is used for transport types without a dedicated logo
const DefaultLogo = "bvg_logo.svg"

var logos = map[string]string{
	"Bus":    "bus_logo.png",
	"Tram":   "tram_logo.png",
	"Subway": "ubahn_logo.png",
}

// Formatter maps eligible records to display rows
type Formatter struct {
	registry *stations.Registry
	loc      *time.Location
}

// NewFormatter creates a formatter rendering times in loc
func NewFormatter(registry *stations.Registry, loc *time.Location) Formatter {
	return Formatter{registry: registry, loc: loc}
}

// Format builds the display row. Both DepartureTime and PlannedTime carry
// the effective instant.
func (f Formatter) Format(rec models.RawDeparture, stopID string, effective time.Time, minutesUntil int) models.FormattedDeparture {
	stamp := effective.In(f.loc).Format(TimeLayout)
	label := TypeLabel(rec.TransportType)

	return models.FormattedDeparture{
		Line:          rec.LineName,
		Direction:     rec.Direction,
		DepartureStop: f.registry.LookupName(stopID),
		DepartureTime: stamp,
		PlannedTime:   stamp,
		MinutesUntil:  minutesUntil,
		DelayDisplay:  DelayDisplay(rec.DelaySeconds),
		TypeLabel:     label,
		LogoRef:       LogoRef(label),
		StopID:        stopID,
		TripID:        rec.TripID,
	}
}

// DelayDisplay renders a delay in seconds as whole minutes rounded down,
// or OnTime when there is none.
func DelayDisplay(delaySeconds *int) string {
	if delaySeconds == nil || *delaySeconds == 0 {
		return OnTime
	}
	return strconv.Itoa(floorDiv(*delaySeconds, 60)) + " min"
}

// TypeLabel upper-cases the first letter and lower-cases the rest
func TypeLabel(transportType string) string {
	if transportType == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(transportType)
	return cases.Upper(language.Und).String(string(first)) +
		cases.Lower(language.Und).String(transportType[size:])
}

// LogoRef returns the logo asset for a type label
func LogoRef(typeLabel string) string {
	if logo, ok := logos[typeLabel]; ok {
		return logo
	}
	return DefaultLogo
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
