// Package tray runs the system tray presence on its own goroutine. Its menu
// actions never touch window state; they post requests to the UI loop.
package tray

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"stocktracker/internal/calc"
	"stocktracker/internal/display"
	"stocktracker/internal/logger"
	"stocktracker/internal/window"
)

var ErrAssetMissing = errors.New("tray icon asset missing")

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// LoadIcon reads a PNG icon. Anything that is not a readable PNG yields
// ErrAssetMissing.
func LoadIcon(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no icon path", ErrAssetMissing)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetMissing, err)
	}
	if !bytes.HasPrefix(b, pngSignature) {
		return nil, fmt.Errorf("%w: %s is not a PNG", ErrAssetMissing, path)
	}
	return b, nil
}

// MenuItem is one entry of the tray menu.
type MenuItem struct {
	Label   string
	Tooltip string
	OnClick func()
}

// Menu describes the tray icon and its entries.
type Menu struct {
	Icon    []byte
	Title   string
	Tooltip string
	// OnTapped is the primary activation (left click) where the host
	// supports it.
	OnTapped func()
	Items    []MenuItem
}

// Host is the tray library. Run blocks until Quit is called; SetTooltip may
// be called from any goroutine while Run is active.
type Host interface {
	Run(menu Menu)
	SetTooltip(text string)
	Quit()
}

// Poster hands a function to the UI context.
type Poster interface {
	Post(fn func())
}

// Options configures the tray labels.
type Options struct {
	Title    string
	Tooltip  string
	Interval time.Duration // tooltip refresh
}

// Presenter is the tray presence of the application.
type Presenter struct {
	host   Host
	ui     Poster
	state  *display.State
	icon   []byte
	opts   Options
	log    logger.Logger
	onOpen func()
	onQuit func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New builds a presenter. onOpen and onQuit run on the UI context.
func New(host Host, icon []byte, opts Options, ui Poster, state *display.State, onOpen, onQuit func(), log logger.Logger) *Presenter {
	if opts.Title == "" {
		opts.Title = "Stock tracker"
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	return &Presenter{
		host:   host,
		ui:     ui,
		state:  state,
		icon:   icon,
		opts:   opts,
		log:    log,
		onOpen: onOpen,
		onQuit: onQuit,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the tray on a new goroutine.
func (p *Presenter) Start() {
	go p.run()
}

func (p *Presenter) run() {
	defer close(p.done)
	go p.refresh()

	p.host.Run(Menu{
		Icon:     p.icon,
		Title:    p.opts.Title,
		Tooltip:  p.Tooltip(),
		OnTapped: p.Open,
		Items: []MenuItem{
			{Label: "Open", Tooltip: "Show the window", OnClick: p.Open},
			{Label: "Quit", Tooltip: "Exit the application", OnClick: p.Quit},
		},
	})
	p.stopOnce.Do(func() { close(p.stop) })
	p.log.Debugf("tray loop finished")
}

func (p *Presenter) refresh() {
	t := time.NewTicker(p.opts.Interval)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			p.host.SetTooltip(p.Tooltip())
		}
	}
}

// Open asks the UI context to restore the window.
func (p *Presenter) Open() { p.ui.Post(p.onOpen) }

// Quit asks the UI context to shut the application down.
func (p *Presenter) Quit() { p.ui.Post(p.onQuit) }

// Tooltip describes the latest snapshot. Like the window, it shows a
// placeholder until the selected instrument has a snapshot of its own.
func (p *Presenter) Tooltip() string {
	snap, ok := p.state.Current()
	if sel, known := p.state.Selected(); known && (!ok || snap.Instrument.Name != sel.Name) {
		return sel.Name + " " + window.Placeholder
	}
	if !ok {
		if p.opts.Tooltip != "" {
			return p.opts.Tooltip
		}
		return p.opts.Title
	}
	return fmt.Sprintf("%s %s %s | Today %s | Yesterday %s",
		snap.Instrument.Name, snap.CurrentPrice.StringFixed(2), snap.Instrument.Currency,
		calc.FormatPct(snap.Metrics.ChangeToday), calc.FormatPct(snap.Metrics.ChangeYesterday))
}

// Stop ends the host loop. Called on the UI context during shutdown.
func (p *Presenter) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.host.Quit()
}

// Done is closed once the tray goroutine has returned.
func (p *Presenter) Done() <-chan struct{} { return p.done }
