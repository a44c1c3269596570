// Package window is the toolkit-independent half of the main window: the
// view model, the instrument selector and visibility. Every method runs on
// the UI context.
package window

import (
	"fmt"
	"time"

	"stocktracker/internal/calc"
	"stocktracker/internal/catalog"
	"stocktracker/internal/display"
	"stocktracker/internal/logger"
)

const Placeholder = "Loading..."

// Selector is the scheduler side of the selection control.
type Selector interface {
	Select(inst catalog.Instrument)
	Selected() catalog.Instrument
}

// Change is one percentage row.
type Change struct {
	Label string
	Text  string
	Trend calc.Trend
}

// View is what the window renders for the selected instrument.
type View struct {
	Title     string
	Loading   bool
	Today     Change
	Yesterday Change
	AsOf      time.Time
}

// Presenter owns the selection control and window visibility.
type Presenter struct {
	catalog *catalog.Catalog
	state   *display.State
	sched   Selector
	log     logger.Logger

	visible bool
	hasTray bool
	quit    func()
}

// New returns a visible presenter. quit is called by Close when no tray is
// attached.
func New(cat *catalog.Catalog, state *display.State, sched Selector, quit func(), log logger.Logger) *Presenter {
	return &Presenter{
		catalog: cat,
		state:   state,
		sched:   sched,
		log:     log,
		visible: true,
		quit:    quit,
	}
}

// AttachTray records that a tray presence can restore the window.
func (p *Presenter) AttachTray() { p.hasTray = true }

// View renders the latest snapshot for the selected instrument. A snapshot
// of a previously selected instrument is not shown.
func (p *Presenter) View() View {
	sel := p.sched.Selected()
	snap, ok := p.state.Current()
	if !ok || snap.Instrument.Name != sel.Name {
		return View{
			Title:     fmt.Sprintf("%s %s", sel.Name, Placeholder),
			Loading:   true,
			Today:     Change{Label: "Today", Text: Placeholder},
			Yesterday: Change{Label: "Yesterday", Text: Placeholder},
		}
	}
	m := snap.Metrics
	return View{
		Title: fmt.Sprintf("%s %s %s", snap.Instrument.Name, snap.CurrentPrice.StringFixed(2), snap.Instrument.Currency),
		Today: Change{
			Label: "Today",
			Text:  calc.FormatPct(m.ChangeToday),
			Trend: calc.Direction(m.ChangeToday),
		},
		Yesterday: Change{
			Label: "Yesterday",
			Text:  calc.FormatPct(m.ChangeYesterday),
			Trend: calc.Direction(m.ChangeYesterday),
		},
		AsOf: snap.AsOf,
	}
}

// Options lists the selectable names in catalog order.
func (p *Presenter) Options() []string { return p.catalog.Names() }

func (p *Presenter) Selected() string { return p.sched.Selected().Name }

// Select changes the tracked instrument. Selecting the current one is a no-op.
func (p *Presenter) Select(name string) error {
	inst, err := p.catalog.Lookup(name)
	if err != nil {
		return err
	}
	if inst == p.sched.Selected() {
		return nil
	}
	p.sched.Select(inst)
	return nil
}

func (p *Presenter) Hide() {
	if p.visible {
		p.log.Debugf("window hidden")
	}
	p.visible = false
}

func (p *Presenter) Show() {
	if !p.visible {
		p.log.Debugf("window restored")
	}
	p.visible = true
}

func (p *Presenter) Visible() bool { return p.visible }

// Close handles the window close gesture. With a tray it only hides the
// window; without one nothing could bring it back, so the app quits.
func (p *Presenter) Close() {
	if p.hasTray {
		p.Hide()
		return
	}
	p.log.Infof("window closed without tray, quitting")
	if p.quit != nil {
		p.quit()
	}
}
