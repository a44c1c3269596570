// Package scheduler runs the fetch, compute and publish cycle for the
// selected instrument.
//
// All methods must be called on the UI context, the goroutine that drains
// the Executor. Fetches run on worker goroutines and hand their result back
// through Executor.Post, so the scheduler itself needs no locking.
package scheduler

import (
	"context"
	"errors"
	"time"

	"stocktracker/internal/calc"
	"stocktracker/internal/catalog"
	"stocktracker/internal/display"
	"stocktracker/internal/logger"
	"stocktracker/internal/provider"
	"stocktracker/internal/uiloop"
)

// Executor is the UI context.
type Executor interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) uiloop.Timer
}

// Fetcher returns a raw quote for a provider symbol.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (provider.RawQuote, error)
}

// Phase is where the current cycle stands.
type Phase int

const (
	Idle Phase = iota
	Fetching
	Computing
	Published
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Computing:
		return "computing"
	case Published:
		return "published"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// cycle identifies one fetch. A completion is applied only while its cycle
// is still the newest one.
type cycle struct {
	gen        uint64
	instrument catalog.Instrument
}

// Scheduler polls the selected instrument and publishes to display.State.
type Scheduler struct {
	ctx      context.Context
	exec     Executor
	fetcher  Fetcher
	state    *display.State
	interval time.Duration
	log      logger.Logger
	now      func() time.Time

	selected catalog.Instrument
	gen      uint64
	phase    Phase
	timer    uiloop.Timer
	failures int
	stopped  bool
}

// New creates a scheduler tracking initial. ctx bounds worker fetches and
// should be cancelled at shutdown.
func New(ctx context.Context, exec Executor, fetcher Fetcher, state *display.State, interval time.Duration, initial catalog.Instrument, log logger.Logger) *Scheduler {
	state.SetSelected(initial)
	return &Scheduler{
		ctx:      ctx,
		exec:     exec,
		fetcher:  fetcher,
		state:    state,
		interval: interval,
		log:      log,
		now:      time.Now,
		selected: initial,
	}
}

// Start begins the first cycle.
func (s *Scheduler) Start() {
	if s.stopped {
		return
	}
	s.log.Infof("polling %s (%s) every %s", s.selected.Name, s.selected.Symbol, s.interval)
	s.begin()
}

// Select switches the tracked instrument and starts a cycle for it right
// away. A fetch still in flight for the old selection is left to finish and
// its result is dropped.
func (s *Scheduler) Select(inst catalog.Instrument) {
	if s.stopped {
		return
	}
	if s.phase == Fetching {
		s.phase = Cancelled
		s.log.Debugf("cycle %d for %s cancelled by selection change", s.gen, s.selected.Name)
	}
	s.stopTimer()
	s.selected = inst
	s.state.SetSelected(inst)
	s.failures = 0
	s.log.Infof("selected %s (%s)", inst.Name, inst.Symbol)
	s.begin()
}

// Stop halts polling. Completions arriving later are ignored.
func (s *Scheduler) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.stopTimer()
	s.phase = Cancelled
}

func (s *Scheduler) Selected() catalog.Instrument { return s.selected }

func (s *Scheduler) Phase() Phase { return s.phase }

// Failures is the number of consecutive failed cycles for the selection.
func (s *Scheduler) Failures() int { return s.failures }

func (s *Scheduler) begin() {
	s.gen++
	c := cycle{gen: s.gen, instrument: s.selected}
	s.phase = Fetching

	ctx, fetcher, exec := s.ctx, s.fetcher, s.exec
	go func() {
		q, err := fetcher.Fetch(ctx, c.instrument.Symbol)
		exec.Post(func() { s.complete(c, q, err) })
	}()
}

func (s *Scheduler) current(c cycle) bool {
	return !s.stopped && c.gen == s.gen && c.instrument == s.selected
}

func (s *Scheduler) complete(c cycle, q provider.RawQuote, err error) {
	if !s.current(c) {
		s.log.Debugf("dropping stale result for %s (cycle %d, now %d)", c.instrument.Name, c.gen, s.gen)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	s.phase = Computing
	m, err := calc.Derive(q)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.state.Publish(&display.Snapshot{
		Instrument:   c.instrument,
		CurrentPrice: q.CurrentPrice,
		Metrics:      m,
		AsOf:         s.now(),
	})
	if s.failures > 0 {
		s.log.Infof("%s recovered after %d failed cycles", c.instrument.Name, s.failures)
	}
	s.failures = 0
	s.phase = Published
	s.schedule(c)
}

func (s *Scheduler) fail(c cycle, err error) {
	s.failures++
	s.phase = Idle
	switch {
	case errors.Is(err, provider.ErrInsufficientHistory):
		s.log.Infof("%s: no data yet: %v", c.instrument.Name, err)
	case errors.Is(err, provider.ErrUnknownInstrument):
		s.log.Errorf("%s: provider does not know %s: %v", c.instrument.Name, c.instrument.Symbol, err)
	default:
		s.log.Warnf("%s: cycle failed (%d in a row): %v", c.instrument.Name, s.failures, err)
	}
	s.schedule(c)
}

func (s *Scheduler) schedule(c cycle) {
	s.timer = s.exec.AfterFunc(s.interval, func() {
		// a timer that fired just before Select stopped it
		if !s.current(c) {
			return
		}
		s.timer = nil
		s.begin()
	})
}

func (s *Scheduler) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
