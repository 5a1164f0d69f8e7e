package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mobil-koeln/moko-board/internal/logging"
	"github.com/mobil-koeln/moko-board/internal/models"
	"github.com/mobil-koeln/moko-board/internal/stations"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWindowMinutes is the lookahead requested from the upstream
	DefaultWindowMinutes = 20
	defaultConcurrency   = 4
)

// ErrFetchFailed is matched by every FetchError
var ErrFetchFailed = errors.New("fetching departures failed")

// FetchError wraps a failed fetch for one stop
type FetchError struct {
	StopID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("stop %s: %v", e.StopID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for FetchError
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// Fetcher loads raw departures for one stop
type Fetcher interface {
	GetDepartures(ctx context.Context, stopID string, windowMinutes int) ([]models.RawDeparture, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, stopID string, windowMinutes int) ([]models.RawDeparture, error)

// GetDepartures calls f
func (f FetcherFunc) GetDepartures(ctx context.Context, stopID string, windowMinutes int) ([]models.RawDeparture, error) {
	return f(ctx, stopID, windowMinutes)
}

// FailurePolicy controls how fetch failures affect a run
type FailurePolicy int

const (
	// FailClosed empties the whole board when any stop fails
	FailClosed FailurePolicy = iota
	// FailPartial drops only the failing stops
	FailPartial
)

func (p FailurePolicy) String() string {
	if p == FailPartial {
		return "partial"
	}
	return "closed"
}

// ParseFailurePolicy parses "closed" or "partial"
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "closed":
		return FailClosed, nil
	case "partial":
		return FailPartial, nil
	}
	return FailClosed, fmt.Errorf("unknown failure policy %q (want closed or partial)", s)
}

// Report is the outcome of one aggregation run
type Report struct {
	Result      models.AggregateResult
	GeneratedAt time.Time
	Skipped     SkipCounts
	FailedStops []string
}

// Service runs the full board: fetch every stop, process, aggregate
type Service struct {
	registry    *stations.Registry
	pipeline    *Pipeline
	fetcher     Fetcher
	logger      *logging.Logger
	policy      FailurePolicy
	window      int
	concurrency int
}

// ServiceOption configures the Service
type ServiceOption func(*Service)

// WithPolicy sets the fetch failure policy
func WithPolicy(p FailurePolicy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

// WithWindow sets the lookahead in minutes requested per stop
func WithWindow(minutes int) ServiceOption {
	return func(s *Service) {
		if minutes > 0 {
			s.window = minutes
		}
	}
}

// WithConcurrency limits parallel upstream fetches
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a board service
func NewService(registry *stations.Registry, resolver *TimeResolver, fetcher Fetcher, opts ...ServiceOption) *Service {
	s := &Service{
		registry:    registry,
		fetcher:     fetcher,
		logger:      logging.Discard(),
		policy:      FailClosed,
		window:      DefaultWindowMinutes,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.pipeline = NewPipeline(registry, resolver, s.logger)

	return s
}

// Policy returns the configured failure policy
func (s *Service) Policy() FailurePolicy {
	return s.policy
}

// StopIDs returns the stops Build fetches, in board order
func (s *Service) StopIDs() []string {
	return s.registry.StopIDs()
}

// Window returns the lookahead in minutes requested per stop
func (s *Service) Window() int {
	return s.window
}

// Build fetches every configured stop and aggregates the board. Now is
// sampled once per run. Stops are merged in registry order regardless of
// which fetch finishes first.
//
// Under FailClosed a fetch failure yields an empty result together with
// the FetchError. Under FailPartial the failing stops are listed in the
// report and Build returns nil.
func (s *Service) Build(ctx context.Context) (Report, error) {
	now := s.pipeline.Resolver().Now()
	stopIDs := s.registry.StopIDs()

	report := Report{
		Result:      models.NewAggregateResult(),
		GeneratedAt: now,
		Skipped:     SkipCounts{},
	}

	fetched := make([][]models.RawDeparture, len(stopIDs))
	errs := make([]error, len(stopIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, stopID := range stopIDs {
		g.Go(func() error {
			deps, err := s.fetcher.GetDepartures(gctx, stopID, s.window)
			if err != nil {
				errs[i] = &FetchError{StopID: stopID, Err: err}
				if s.policy == FailClosed {
					return errs[i]
				}
				return nil
			}
			fetched[i] = deps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Printf("fetch failed, showing empty board: %v", err)
		report.FailedStops = failedStops(stopIDs, errs)
		return report, err
	}

	var rows []models.FormattedDeparture
	for i, stopID := range stopIDs {
		if errs[i] != nil {
			s.logger.Printf("skipping stop %s: %v", stopID, errs[i])
			report.FailedStops = append(report.FailedStops, stopID)
			continue
		}
		stopRows, skipped := s.pipeline.ProcessStop(stopID, fetched[i], now)
		rows = append(rows, stopRows...)
		report.Skipped.Add(skipped)
	}

	report.Result = Aggregate(rows)
	s.logger.Debugf("board built: %d shown, %d skipped, %d stops failed",
		report.Result.Len(), report.Skipped.Total(), len(report.FailedStops))

	return report, nil
}

func failedStops(stopIDs []string, errs []error) []string {
	var failed []string
	for i, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			failed = append(failed, stopIDs[i])
		}
	}
	return failed
}
