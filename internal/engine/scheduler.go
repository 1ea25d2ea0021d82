package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mfm/internal/core"
)

// DefaultMaxRetries bounds site reselection after ErrRegionBusy.
const DefaultMaxRetries = 4

// Outcome classifies one scheduler turn.
type Outcome int

const (
	// OutcomeExecuted means Execute ran and returned nil.
	OutcomeExecuted Outcome = iota
	// OutcomeFault means Execute returned an error; the event was still
	// committed as far as it got.
	OutcomeFault
	// OutcomeDeferred means every attempt hit ErrRegionBusy and the turn was
	// given up.
	OutcomeDeferred
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeFault:
		return "fault"
	case OutcomeDeferred:
		return "deferred"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// EventResult reports what one turn did.
type EventResult struct {
	Outcome Outcome
	Site    core.Offset
	Type    uint32
	Retries int
	// Err is the behavior's error when Outcome is OutcomeFault.
	Err error
}

// Scheduler selects sites, leases their neighborhoods, and dispatches
// events to behaviors.
type Scheduler struct {
	reg        *Registry
	maxRetries int
	strict     bool
	logger     *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxRetries sets how many times a busy site is reselected before the
// turn is deferred.
func WithMaxRetries(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithStrictFaults makes RunTile stop at the first faulted event.
func WithStrictFaults() Option {
	return func(s *Scheduler) { s.strict = true }
}

// WithLogger replaces the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler returns a scheduler dispatching through reg.
func NewScheduler(reg *Registry, opts ...Option) *Scheduler {
	s := &Scheduler{
		reg:        reg,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default().With(slog.String("component", "scheduler")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry events are dispatched through.
func (s *Scheduler) Registry() *Registry { return s.reg }

// Step runs one turn on t: pick a uniform core site, lease it (reselecting
// on ErrRegionBusy), dispatch, commit, release.
//
// The returned error is non-nil only for fatal conditions (an atom whose
// type has no behavior). Behavior failures are reported through
// EventResult.Err with OutcomeFault.
func (s *Scheduler) Step(t *Tile) (EventResult, error) {
	for attempt := 0; ; attempt++ {
		site, seed := t.pickSite()
		l, err := t.acquire(site)
		if errors.Is(err, ErrRegionBusy) {
			t.stats.busy.Add(1)
			if attempt < s.maxRetries {
				continue
			}
			t.stats.deferred.Add(1)
			return EventResult{Outcome: OutcomeDeferred, Site: site, Retries: attempt}, nil
		}
		if err != nil {
			return EventResult{Site: site, Retries: attempt}, err
		}
		res, err := s.dispatch(t, l, seed)
		res.Retries = attempt
		return res, err
	}
}

// ExecuteAt runs one event centered at the absolute core site abs. It
// returns ErrRegionBusy without retrying when the neighborhood is held.
func (s *Scheduler) ExecuteAt(t *Tile, abs core.Offset) (EventResult, error) {
	if !t.InCore(abs) {
		return EventResult{}, fmt.Errorf("%w: %v not in tile %v", ErrNotInTile, abs, t.index)
	}
	l, err := t.acquire(abs)
	if err != nil {
		t.stats.busy.Add(1)
		return EventResult{Site: abs}, err
	}
	return s.dispatch(t, l, t.eventSeed())
}

func (s *Scheduler) dispatch(t *Tile, l *lease, seed uint64) (EventResult, error) {
	defer t.release(l)

	center := t.load(l.center)
	res := EventResult{Site: l.center}
	typ, err := center.DecodeType()
	if err != nil {
		return res, &EventError{Tile: t.index, Site: l.center, Err: err}
	}
	res.Type = typ
	b, err := s.reg.Lookup(typ)
	if err != nil {
		return res, &EventError{Tile: t.index, Site: l.center, Type: typ, Err: err}
	}

	w := newWindow(t, l, seed)
	execErr := b.Execute(w)
	t.commit(w.close())
	t.stats.events.Add(1)

	if execErr != nil {
		t.stats.faults.Add(1)
		res.Outcome = OutcomeFault
		res.Err = &EventError{Tile: t.index, Site: l.center, Type: typ, Err: execErr}
		return res, nil
	}
	res.Outcome = OutcomeExecuted
	return res, nil
}

// RunTile runs n turns on t, or until ctx is done when n <= 0. Cancellation
// is observed only between events. Faults are logged and counted; with
// strict faults the first one is returned.
func (s *Scheduler) RunTile(ctx context.Context, t *Tile, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.Step(t)
		if err != nil {
			s.logger.Error("fatal event",
				slog.String("tile", t.index.String()),
				slog.String("site", res.Site.String()),
				slog.String("error", err.Error()))
			return err
		}
		switch res.Outcome {
		case OutcomeFault:
			s.logger.Error("event fault",
				slog.String("tile", t.index.String()),
				slog.String("site", res.Site.String()),
				slog.Int("type", int(res.Type)),
				slog.String("error", res.Err.Error()))
			if s.strict {
				return res.Err
			}
		case OutcomeDeferred:
			s.logger.Debug("turn deferred",
				slog.String("tile", t.index.String()),
				slog.Int("retries", res.Retries))
		}
	}
	return nil
}
