package board

import (
	"errors"
	"time"

	"github.com/mobil-koeln/moko-board/internal/logging"
	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
)

// Outcome is the result of processing one raw record: either a display
// row or the reason it was skipped.
type Outcome struct {
	Departure models.FormattedDeparture
	Skip      SkipReason
	Err       error // parse detail for SkipUnparsableTime
}

// OK reports whether the record produced a display row
func (o Outcome) OK() bool {
	return o.Skip == SkipNone
}

// SkipCounts tallies skipped records by reason
type SkipCounts map[SkipReason]int

// Add merges other into c
func (c SkipCounts) Add(other SkipCounts) {
	for reason, n := range other {
		c[reason] += n
	}
}

// Total returns the number of skipped records
func (c SkipCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// ByName returns the counts keyed by reason name
func (c SkipCounts) ByName() map[string]int {
	out := make(map[string]int, len(c))
	for reason, n := range c {
		out[reason.String()] = n
	}
	return out
}

// Pipeline turns raw records into display rows. It holds no mutable state
// and may be shared between goroutines.
type Pipeline struct {
	resolver  *TimeResolver
	filter    Filter
	formatter Formatter
	logger    *logging.Logger
}

// NewPipeline wires the resolver, filter and formatter for a registry
func NewPipeline(registry *stations.Registry, resolver *TimeResolver, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		resolver:  resolver,
		filter:    NewFilter(registry),
		formatter: NewFormatter(registry, resolver.Location()),
		logger:    logger,
	}
}

// Resolver returns the pipeline's time resolver
func (p *Pipeline) Resolver() *TimeResolver {
	return p.resolver
}

// Process handles a single record against a fixed now. It never fails;
// problems are reported through the Outcome.
func (p *Pipeline) Process(rec models.RawDeparture, stopID string, now time.Time) Outcome {
	effective, fallback, err := p.resolver.ResolveEffectiveInstant(rec.RealTimeWhen, rec.ScheduledWhen)
	if fallback && err == nil {
		p.logger.Debugf("no real-time value, using plannedWhen %s for trip %s", *rec.ScheduledWhen, rec.TripID)
	}

	minutes := 0
	if err == nil {
		minutes = MinutesUntil(effective, now)
	}

	reason := p.filter.Check(rec, stopID, minutes, err == nil)
	if reason == SkipUnparsableTime && errors.Is(err, ErrNoTimestamp) {
		reason = SkipMissingTime
	}
	if reason != SkipNone {
		p.logger.Debugf("skipping trip %s at %s: %s", rec.TripID, stopID, reason)
		return Outcome{Skip: reason, Err: err}
	}

	p.logger.Debugf("trip %s departs in %d min (delay %ds)", rec.TripID, minutes, rec.Delay())
	return Outcome{Departure: p.formatter.Format(rec, stopID, effective, minutes)}
}

// ProcessStop handles every record of one stop in order. A bad record
// only affects itself.
func (p *Pipeline) ProcessStop(stopID string, recs []models.RawDeparture, now time.Time) ([]models.FormattedDeparture, SkipCounts) {
	rows := make([]models.FormattedDeparture, 0, len(recs))
	skipped := SkipCounts{}

	for _, rec := range recs {
		out := p.Process(rec, stopID, now)
		if !out.OK() {
			skipped[out.Skip]++
			continue
		}
		rows = append(rows, out.Departure)
	}

	return rows, skipped
}
