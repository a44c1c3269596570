// Package display holds the latest publishable reading. It is the only state
// shared between the UI context and the tray context.
package display

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/internal/calc"
	"stocktracker/internal/catalog"
)

// Snapshot is immutable once published.
type Snapshot struct {
	Instrument   catalog.Instrument
	CurrentPrice decimal.Decimal
	Metrics      calc.Metrics
	AsOf         time.Time
}

// State is written by the scheduler and read by any goroutine. Readers never
// block and always see a whole snapshot.
type State struct {
	cur atomic.Pointer[Snapshot]
	sel atomic.Pointer[catalog.Instrument]
}

func (s *State) Publish(snap *Snapshot) {
	s.cur.Store(snap)
}

// Current returns the latest snapshot; ok is false before the first publish.
func (s *State) Current() (*Snapshot, bool) {
	snap := s.cur.Load()
	return snap, snap != nil
}

// SetSelected records the instrument being tracked. Written by the scheduler.
func (s *State) SetSelected(inst catalog.Instrument) {
	s.sel.Store(&inst)
}

// Selected returns the tracked instrument; ok is false until one is set.
func (s *State) Selected() (catalog.Instrument, bool) {
	inst := s.sel.Load()
	if inst == nil {
		return catalog.Instrument{}, false
	}
	return *inst, true
}
