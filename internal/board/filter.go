package board

import (
	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
)

// MinLeadMinutes is the smallest lead time a departure needs to be shown.
// Anything sooner cannot be reached by a rider looking at the board.
const MinLeadMinutes = 2

// SkipReason explains why a record was dropped
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipTypeNotAllowed
	SkipMissingTime
	SkipUnparsableTime
	SkipImminent
)

var skipReasonNames = map[SkipReason]string{
	SkipNone:           "none",
	SkipTypeNotAllowed: "type_not_allowed",
	SkipMissingTime:    "missing_time",
	SkipUnparsableTime: "unparsable_time",
	SkipImminent:       "imminent",
}

func (r SkipReason) String() string {
	if name, ok := skipReasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Filter decides whether a raw record may appear on the board
type Filter struct {
	registry *stations.Registry
}

// NewFilter creates a filter backed by a station registry
func NewFilter(registry *stations.Registry) Filter {
	return Filter{registry: registry}
}

// Check returns the first reason the record is ineligible, or SkipNone.
// Transport type is checked before time so that restricted platforms are
// reported consistently even when the time is broken.
func (f Filter) Check(rec models.RawDeparture, stopID string, minutesUntil int, parseOK bool) SkipReason {
	if !f.registry.IsTypeAllowed(stopID, rec.TransportType) {
		return SkipTypeNotAllowed
	}
	if !parseOK {
		return SkipUnparsableTime
	}
	if minutesUntil < MinLeadMinutes {
		return SkipImminent
	}
	return SkipNone
}

// IsEligible reports whether the record passes every rule
func (f Filter) IsEligible(rec models.RawDeparture, stopID string, minutesUntil int, parseOK bool) bool {
	return f.Check(rec, stopID, minutesUntil, parseOK) == SkipNone
}
