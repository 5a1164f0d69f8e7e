package models

// FormattedDeparture is a display-ready departure row.
//
// DepartureTime and PlannedTime are both rendered from the effective
// (real-time or scheduled fallback) instant.
type FormattedDeparture struct {
	Line          string `json:"line"`
	Direction     string `json:"direction"`
	DepartureStop string `json:"departure_stop"`
	DepartureTime string `json:"departure_time"`
	PlannedTime   string `json:"planned_time"`
	MinutesUntil  int    `json:"in_next"`
	DelayDisplay  string `json:"delay"`
	TypeLabel     string `json:"type"`
	LogoRef       string `json:"logo"`
	StopID        string `json:"stop_id"`
	TripID        string `json:"trip_id,omitempty"`
}

// AggregateResult groups departures by type label. Order lists the labels
// in the order they first occurred in the time-sorted input.
type AggregateResult struct {
	Groups map[string][]FormattedDeparture `json:"groups"`
	Order  []string                        `json:"order"`
}

// NewAggregateResult returns an empty result
func NewAggregateResult() AggregateResult {
	return AggregateResult{
		Groups: make(map[string][]FormattedDeparture),
		Order:  []string{},
	}
}

// Group returns the departures for a type label
func (r AggregateResult) Group(label string) []FormattedDeparture {
	return r.Groups[label]
}

// Len returns the total number of departures across all groups
func (r AggregateResult) Len() int {
	n := 0
	for _, deps := range r.Groups {
		n += len(deps)
	}
	return n
}

// IsEmpty reports whether no group holds any departure
func (r AggregateResult) IsEmpty() bool {
	return r.Len() == 0
}
