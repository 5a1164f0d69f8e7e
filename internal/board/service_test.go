package board

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
	"github.com/mobil-koeln/moko-board/internal/testutil"
)

var errUpstream = errors.New("upstream exploded")

func dep(trip, typ, when string) models.RawDeparture {
	return models.RawDeparture{
		TripID:        trip,
		TransportType: typ,
		LineName:      trip,
		RealTimeWhen:  strPtr(when),
	}
}

// canned serves fixed departures per stop and records the requested window
type canned struct {
	mu      sync.Mutex
	byStop  map[string][]models.RawDeparture
	fail    map[string]error
	delay   map[string]time.Duration
	windows []int
}

func (c *canned) GetDepartures(ctx context.Context, stopID string, window int) ([]models.RawDeparture, error) {
	c.mu.Lock()
	c.windows = append(c.windows, window)
	c.mu.Unlock()

	if d := c.delay[stopID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := c.fail[stopID]; err != nil {
		return nil, err
	}
	return c.byStop[stopID], nil
}

func newTestService(t *testing.T, f Fetcher, opts ...ServiceOption) *Service {
	t.Helper()
	loc := berlin(t)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
	return NewService(stations.Default(), NewTimeResolver(loc, FixedClock(now)), f, opts...)
}

func fullBoard() *canned {
	return &canned{
		byStop: map[string][]models.RawDeparture{
			"900007105": {
				dep("247", "bus", "2024-01-01T10:05:00+01:00"),
				dep("M10", "tram", "2024-01-01T10:07:00+01:00"),
				dep("N8", "bus", "2024-01-01T10:01:00+01:00"),
			},
			"900007110": {
				dep("U8-a", "subway", "2024-01-01T10:04:00+01:00"),
				dep("245", "bus", "2024-01-01T10:03:00+01:00"),
			},
			"900110006": {
				dep("U2", "subway", "2024-01-01T10:06:00+01:00"),
			},
		},
	}
}

func TestService_Build(t *testing.T) {
	svc := newTestService(t, fullBoard())

	report, err := svc.Build(context.Background())
	testutil.AssertNil(t, err)

	result := report.Result
	testutil.AssertLen(t, result.Order, 3)
	testutil.AssertEqual(t, result.Order[0], "Subway")
	testutil.AssertEqual(t, result.Order[1], "Bus")
	testutil.AssertEqual(t, result.Order[2], "Tram")

	testutil.AssertLen(t, result.Group("Subway"), 2)
	testutil.AssertEqual(t, result.Group("Subway")[0].DepartureStop, "U-Bernauer Str.")
	testutil.AssertLen(t, result.Group("Bus"), 1)
	testutil.AssertEqual(t, result.Group("Bus")[0].Line, "247")
	testutil.AssertLen(t, result.Group("Tram"), 1)

	testutil.AssertEqual(t, report.Skipped[SkipImminent], 1)
	testutil.AssertEqual(t, report.Skipped[SkipTypeNotAllowed], 1)
	testutil.AssertLen(t, report.FailedStops, 0)
	testutil.AssertEqual(t, report.GeneratedAt.Hour(), 10)
}

func TestService_RequestsWindow(t *testing.T) {
	f := fullBoard()
	svc := newTestService(t, f, WithWindow(45))

	_, err := svc.Build(context.Background())
	testutil.AssertNil(t, err)

	testutil.AssertLen(t, f.windows, 3)
	for _, w := range f.windows {
		testutil.AssertEqual(t, w, 45)
	}
}

func TestService_DefaultWindow(t *testing.T) {
	f := fullBoard()
	svc := newTestService(t, f, WithWindow(0))

	_, err := svc.Build(context.Background())
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, f.windows[0], DefaultWindowMinutes)
}

func TestService_FailClosed(t *testing.T) {
	f := fullBoard()
	f.fail = map[string]error{"900007110": errUpstream}
	svc := newTestService(t, f)

	testutil.AssertEqual(t, svc.Policy(), FailClosed)

	report, err := svc.Build(context.Background())
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, ErrFetchFailed)
	testutil.AssertErrorIs(t, err, errUpstream)

	var fe *FetchError
	testutil.AssertTrue(t, errors.As(err, &fe))
	testutil.AssertEqual(t, fe.StopID, "900007110")

	testutil.AssertTrue(t, report.Result.IsEmpty())
	testutil.AssertLen(t, report.Result.Order, 0)
	testutil.AssertLen(t, report.FailedStops, 1)
	testutil.AssertEqual(t, report.FailedStops[0], "900007110")
}

func TestService_FailPartial(t *testing.T) {
	f := fullBoard()
	f.fail = map[string]error{"900007110": errUpstream}
	svc := newTestService(t, f, WithPolicy(FailPartial))

	report, err := svc.Build(context.Background())
	testutil.AssertNil(t, err)

	testutil.AssertLen(t, report.FailedStops, 1)
	testutil.AssertEqual(t, report.FailedStops[0], "900007110")
	testutil.AssertLen(t, report.Result.Group("Subway"), 1)
	testutil.AssertEqual(t, report.Result.Group("Subway")[0].Line, "U2")
	testutil.AssertLen(t, report.Result.Group("Bus"), 1)
}

func TestService_OrderIndependentOfFetchCompletion(t *testing.T) {
	tie := "2024-01-01T10:05:00+01:00"
	build := func(delays map[string]time.Duration) []string {
		f := &canned{
			byStop: map[string][]models.RawDeparture{
				"900007105": {dep("first", "subway", tie)},
				"900007110": {dep("second", "subway", tie)},
				"900110006": {dep("third", "subway", tie)},
			},
			delay: delays,
		}
		report, err := newTestService(t, f).Build(context.Background())
		testutil.AssertNil(t, err)

		var lines []string
		for _, d := range report.Result.Group("Subway") {
			lines = append(lines, d.Line)
		}
		return lines
	}

	fastLast := build(map[string]time.Duration{"900007105": 30 * time.Millisecond, "900007110": 15 * time.Millisecond})
	fastFirst := build(map[string]time.Duration{"900110006": 30 * time.Millisecond, "900007110": 15 * time.Millisecond})

	testutil.AssertLen(t, fastLast, 3)
	for i, want := range []string{"first", "second", "third"} {
		testutil.AssertEqual(t, fastLast[i], want)
		testutil.AssertEqual(t, fastFirst[i], want)
	}
}

func TestService_SamplesNowOnce(t *testing.T) {
	var calls atomic.Int32
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, berlin(t))
	clock := ClockFunc(func() time.Time {
		n := calls.Add(1)
		return start.Add(time.Duration(n-1) * time.Minute)
	})

	svc := NewService(stations.Default(), NewTimeResolver(berlin(t), clock), fullBoard())
	_, err := svc.Build(context.Background())
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, calls.Load(), int32(1))
}

func TestService_ContextCancelled(t *testing.T) {
	f := fullBoard()
	f.delay = map[string]time.Duration{"900007105": time.Second}
	svc := newTestService(t, f, WithConcurrency(1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	report, err := svc.Build(ctx)
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, context.DeadlineExceeded)
	testutil.AssertTrue(t, report.Result.IsEmpty())
}

func TestService_FetcherFunc(t *testing.T) {
	var seen atomic.Int32
	f := FetcherFunc(func(_ context.Context, stopID string, _ int) ([]models.RawDeparture, error) {
		seen.Add(1)
		return nil, nil
	})

	report, err := newTestService(t, f).Build(context.Background())
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, seen.Load(), int32(3))
	testutil.AssertTrue(t, report.Result.IsEmpty())
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{"", FailClosed, false},
		{"closed", FailClosed, false},
		{"Partial", FailPartial, false},
		{" partial ", FailPartial, false},
		{"open", FailClosed, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFailurePolicy(tt.in)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNil(t, err)
			testutil.AssertEqual(t, got, tt.want)
			testutil.AssertEqual(t, got.String(), tt.want.String())
		})
	}
}
