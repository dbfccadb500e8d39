/*
engine.go - Query entry points for roster and billing reconstruction

PURPOSE:
  Engine wires the reconstruction folds to a Reader. Every query loads
  the inputs it needs, runs a pure fold scoped to the call and returns
  plain values. Nothing is cached between calls, so concurrent queries
  need no coordination and a query racing an approval simply sees the
  log before or after it.

QUERIES:
  CurrentResources(contract, day)      -> roster active on the day
  MonthlySnapshot(contract, month)     -> roster with billing shape
  CurrentBilling(contract, month)      -> baseline + approved deltas
  Timeline(contract, from, to)         -> the two above for each month
  ApprovedResourceEvents(contract)     -> the filtered, ordered event log
  BaselineResources / BaselineBilling  -> the frozen signing state

SEE ALSO:
  - resources.go: Point-in-time fold
  - snapshot.go: Monthly fold
  - billing.go: Billing accumulator
*/
package contract

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultHorizonYears bounds events with no end date in the monthly fold.
	DefaultHorizonYears = 10

	// DefaultTimelineConcurrency caps months reconstructed in parallel.
	DefaultTimelineConcurrency = 4

	// MaxTimelineMonths caps the width of a Timeline query.
	MaxTimelineMonths = 120
)

// Engine answers roster and billing queries for contracts.
type Engine struct {
	store        Reader
	logger       *zap.Logger
	now          func() time.Time
	horizonYears int
	concurrency  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used to bound open-ended events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithHorizonYears sets how far past its start an event with no end date reaches.
func WithHorizonYears(years int) Option {
	return func(e *Engine) {
		if years > 0 {
			e.horizonYears = years
		}
	}
}

// WithTimelineConcurrency caps the months a Timeline query folds in parallel.
func WithTimelineConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine creates an engine reading from store.
func NewEngine(store Reader, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		logger:       zap.NewNop(),
		now:          time.Now,
		horizonYears: DefaultHorizonYears,
		concurrency:  DefaultTimelineConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
