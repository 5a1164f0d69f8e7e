package models

// RawDeparture is a single departure as consumed from the transit API.
// Timestamps are kept as strings so that a malformed value can be told
// apart from a missing one.
type RawDeparture struct {
	TripID        string  `json:"tripId"`
	TransportType string  `json:"transportType"`
	LineName      string  `json:"lineName"`
	Direction     string  `json:"direction"`
	RealTimeWhen  *string `json:"when,omitempty"`
	ScheduledWhen *string `json:"plannedWhen,omitempty"`
	DelaySeconds  *int    `json:"delay,omitempty"`
}

// DepartureResponse represents the raw JSON for a single departure entry
type DepartureResponse struct {
	TripID      string  `json:"tripId"`
	Direction   string  `json:"direction"`
	When        *string `json:"when"`
	PlannedWhen *string `json:"plannedWhen"`
	Delay       *int    `json:"delay"`
	Line        struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Product string `json:"product"`
		Mode    string `json:"mode"`
	} `json:"line"`
}

// DeparturesResponse represents the full API response for departures
type DeparturesResponse struct {
	Departures []DepartureResponse `json:"departures"`
}

// ToRawDeparture converts the wire entry to a RawDeparture
func (r *DepartureResponse) ToRawDeparture() RawDeparture {
	return RawDeparture{
		TripID:        r.TripID,
		TransportType: r.Line.Product,
		LineName:      r.Line.Name,
		Direction:     r.Direction,
		RealTimeWhen:  nonEmpty(r.When),
		ScheduledWhen: nonEmpty(r.PlannedWhen),
		DelaySeconds:  r.Delay,
	}
}

// nonEmpty treats an empty string the same as a JSON null
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Delay returns the delay in seconds, zero when the API did not report one
func (d *RawDeparture) Delay() int {
	if d.DelaySeconds == nil {
		return 0
	}
	return *d.DelaySeconds
}
