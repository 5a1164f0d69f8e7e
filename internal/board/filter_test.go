package board

import (
	"testing"

	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func TestFilter_Check(t *testing.T) {
	f := NewFilter(stations.Default())

	tests := []struct {
		name     string
		typ      string
		stopID   string
		minutes  int
		parseOK  bool
		expected SkipReason
	}{
		{"bus at mixed stop", "bus", "900007105", 5, true, SkipNone},
		{"tram at mixed stop", "tram", "900007105", 2, true, SkipNone},
		{"bus at subway-only stop", "bus", "900007110", 10, true, SkipTypeNotAllowed},
		{"tram at subway-only stop", "tram", "900110006", 10, true, SkipTypeNotAllowed},
		{"subway at subway-only stop", "subway", "900110006", 10, true, SkipNone},
		{"type check ignores case", "Subway", "900007110", 10, true, SkipNone},
		{"one minute away", "bus", "900007105", 1, true, SkipImminent},
		{"departing now", "bus", "900007105", 0, true, SkipImminent},
		{"unparsable time", "bus", "900007105", 0, false, SkipUnparsableTime},
		{"type rejected before time", "bus", "900007110", 0, false, SkipTypeNotAllowed},
		{"unknown stop is unrestricted", "ferry", "900000000000", 4, true, SkipNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.RawDeparture{TransportType: tt.typ}
			got := f.Check(rec, tt.stopID, tt.minutes, tt.parseOK)
			testutil.AssertEqual(t, got, tt.expected)
			testutil.AssertEqual(t, f.IsEligible(rec, tt.stopID, tt.minutes, tt.parseOK), tt.expected == SkipNone)
		})
	}
}

func TestSkipReason_String(t *testing.T) {
	testutil.AssertEqual(t, SkipNone.String(), "none")
	testutil.AssertEqual(t, SkipTypeNotAllowed.String(), "type_not_allowed")
	testutil.AssertEqual(t, SkipMissingTime.String(), "missing_time")
	testutil.AssertEqual(t, SkipUnparsableTime.String(), "unparsable_time")
	testutil.AssertEqual(t, SkipImminent.String(), "imminent")
	testutil.AssertEqual(t, SkipReason(99).String(), "unknown")
}
