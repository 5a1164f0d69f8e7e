package board

import (
	"bytes"
	"testing"
	"time"

	"github.com/mobil-koeln/moko-board/internal/logging"
	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func newTestPipeline(t *testing.T) (*Pipeline, time.Time) {
	t.Helper()
	loc := berlin(t)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
	resolver := NewTimeResolver(loc, FixedClock(now))
	return NewPipeline(stations.Default(), resolver, nil), now
}

func TestPipeline_Process(t *testing.T) {
	p, now := newTestPipeline(t)

	tests := []struct {
		name     string
		rec      models.RawDeparture
		stopID   string
		wantSkip SkipReason
		wantMins int
	}{
		{
			name: "imminent is dropped",
			rec: models.RawDeparture{
				TransportType: "bus",
				RealTimeWhen:  strPtr("2024-01-01T10:01:30+01:00"),
			},
			stopID:   "900007105",
			wantSkip: SkipImminent,
		},
		{
			name: "scheduled-only imminent is dropped",
			rec: models.RawDeparture{
				TransportType: "bus",
				ScheduledWhen: strPtr("2024-01-01T10:01:30+01:00"),
			},
			stopID:   "900007105",
			wantSkip: SkipImminent,
		},
		{
			name: "scheduled-only is kept via fallback",
			rec: models.RawDeparture{
				TransportType: "bus",
				ScheduledWhen: strPtr("2024-01-01T10:03:00+01:00"),
			},
			stopID:   "900007105",
			wantMins: 3,
		},
		{
			name: "five minutes out is kept",
			rec: models.RawDeparture{
				TransportType: "bus",
				RealTimeWhen:  strPtr("2024-01-01T10:05:00+01:00"),
			},
			stopID:   "900007105",
			wantMins: 5,
		},
		{
			name: "exactly two minutes is kept",
			rec: models.RawDeparture{
				TransportType: "tram",
				RealTimeWhen:  strPtr("2024-01-01T10:02:00+01:00"),
			},
			stopID:   "900007105",
			wantMins: 2,
		},
		{
			name: "bus at subway-only stop",
			rec: models.RawDeparture{
				TransportType: "bus",
				RealTimeWhen:  strPtr("2024-01-01T10:10:00+01:00"),
			},
			stopID:   "900007110",
			wantSkip: SkipTypeNotAllowed,
		},
		{
			name:     "no timestamps",
			rec:      models.RawDeparture{TransportType: "bus"},
			stopID:   "900007105",
			wantSkip: SkipMissingTime,
		},
		{
			name: "garbage timestamp",
			rec: models.RawDeparture{
				TransportType: "bus",
				RealTimeWhen:  strPtr("tomorrow-ish"),
				ScheduledWhen: strPtr("2024-01-01T10:10:00+01:00"),
			},
			stopID:   "900007105",
			wantSkip: SkipUnparsableTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Process(tt.rec, tt.stopID, now)
			testutil.AssertEqual(t, out.Skip, tt.wantSkip)
			if tt.wantSkip == SkipNone {
				testutil.AssertTrue(t, out.OK())
				testutil.AssertEqual(t, out.Departure.MinutesUntil, tt.wantMins)
			}
		})
	}
}

func TestPipeline_ScheduledFallback(t *testing.T) {
	p, now := newTestPipeline(t)

	out := p.Process(models.RawDeparture{
		TransportType: "tram",
		LineName:      "M10",
		ScheduledWhen: strPtr("2024-01-01T10:12:00+01:00"),
	}, "900007105", now)

	testutil.AssertTrue(t, out.OK())
	testutil.AssertEqual(t, out.Departure.DepartureTime, "2024-01-01 10:12")
	testutil.AssertEqual(t, out.Departure.PlannedTime, out.Departure.DepartureTime)
	testutil.AssertEqual(t, out.Departure.MinutesUntil, 12)
}

func TestPipeline_ProcessStop_IsolatesBadRecords(t *testing.T) {
	p, now := newTestPipeline(t)

	recs := []models.RawDeparture{
		{TripID: "a", TransportType: "bus", LineName: "247", RealTimeWhen: strPtr("2024-01-01T10:04:00+01:00")},
		{TripID: "b", TransportType: "bus", LineName: "247", RealTimeWhen: strPtr("not a time")},
		{TripID: "c", TransportType: "tram", LineName: "M10", RealTimeWhen: strPtr("2024-01-01T10:06:00+01:00")},
		{TripID: "d", TransportType: "bus", LineName: "247"},
		{TripID: "e", TransportType: "bus", LineName: "247", RealTimeWhen: strPtr("2024-01-01T10:00:30+01:00")},
	}

	rows, skipped := p.ProcessStop("900007105", recs, now)

	testutil.AssertLen(t, rows, 2)
	testutil.AssertEqual(t, rows[0].TripID, "a")
	testutil.AssertEqual(t, rows[1].TripID, "c")
	testutil.AssertEqual(t, skipped[SkipUnparsableTime], 1)
	testutil.AssertEqual(t, skipped[SkipMissingTime], 1)
	testutil.AssertEqual(t, skipped[SkipImminent], 1)
	testutil.AssertEqual(t, skipped.Total(), 3)
}

func TestPipeline_SubwayOnlyStops(t *testing.T) {
	p, now := newTestPipeline(t)

	var recs []models.RawDeparture
	for _, typ := range []string{"bus", "tram", "subway", "suburban", "subway"} {
		recs = append(recs, models.RawDeparture{
			TransportType: typ,
			RealTimeWhen:  strPtr("2024-01-01T10:08:00+01:00"),
		})
	}

	for _, stopID := range []string{"900007110", "900110006"} {
		rows, skipped := p.ProcessStop(stopID, recs, now)
		testutil.AssertLen(t, rows, 2)
		for _, r := range rows {
			testutil.AssertEqual(t, r.TypeLabel, "Subway")
		}
		testutil.AssertEqual(t, skipped[SkipTypeNotAllowed], 3)
	}
}

func TestPipeline_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.WithOutput(&buf), logging.WithDebug(true))

	loc := berlin(t)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
	p := NewPipeline(stations.Default(), NewTimeResolver(loc, FixedClock(now)), logger)

	p.Process(models.RawDeparture{
		TripID:        "trip-1",
		TransportType: "bus",
		ScheduledWhen: strPtr("2024-01-01T10:09:00+01:00"),
	}, "900007105", now)

	testutil.AssertContains(t, buf.String(), "plannedWhen")
	testutil.AssertContains(t, buf.String(), "trip-1 departs in 9 min (delay 0s)")
}

func TestSkipCounts(t *testing.T) {
	c := SkipCounts{SkipImminent: 2}
	c.Add(SkipCounts{SkipImminent: 1, SkipTypeNotAllowed: 4})

	testutil.AssertEqual(t, c.Total(), 7)
	byName := c.ByName()
	testutil.AssertEqual(t, byName["imminent"], 3)
	testutil.AssertEqual(t, byName["type_not_allowed"], 4)
}
