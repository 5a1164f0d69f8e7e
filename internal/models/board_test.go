package models

import "testing"

func TestAggregateResult_Len(t *testing.T) {
	r := NewAggregateResult()
	if !r.IsEmpty() {
		t.Error("new result should be empty")
	}

	r.Groups["Bus"] = []FormattedDeparture{{Line: "247"}, {Line: "N2"}}
	r.Groups["Tram"] = []FormattedDeparture{{Line: "M10"}}
	r.Order = []string{"Bus", "Tram"}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if r.IsEmpty() {
		t.Error("result with departures should not be empty")
	}
	if len(r.Group("Tram")) != 1 {
		t.Errorf("Group(Tram) length = %d, want 1", len(r.Group("Tram")))
	}
	if r.Group("Subway") != nil {
		t.Error("missing group should be nil")
	}
}
