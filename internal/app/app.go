// Package app wires the engine, the window and the optional tray together
// and owns the shutdown order.
package app

import (
	"context"
	"time"

	"stocktracker/internal/catalog"
	"stocktracker/internal/config"
	"stocktracker/internal/display"
	"stocktracker/internal/logger"
	"stocktracker/internal/provider"
	"stocktracker/internal/scheduler"
	"stocktracker/internal/tray"
	"stocktracker/internal/uiloop"
	"stocktracker/internal/window"
)

// App holds the running components.
type App struct {
	log    logger.Logger
	loop   *uiloop.Loop
	state  *display.State
	sched  *scheduler.Scheduler
	win    *window.Presenter
	tray   *tray.Presenter
	cancel context.CancelFunc

	quitting bool
}

// New builds the application. host may be nil, in which case, as when the
// tray is disabled or its icon cannot be loaded, the app runs windowed-only.
func New(ctx context.Context, cfg config.Config, src provider.Source, host tray.Host, log logger.Logger) (*App, error) {
	cat, err := catalog.New(cfg.Instruments)
	if err != nil {
		return nil, err
	}
	initial, err := cat.Lookup(cfg.DefaultInstrument)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		log:    log,
		loop:   uiloop.New(),
		state:  &display.State{},
		cancel: cancel,
	}
	fetcher := provider.NewQuoteFetcher(src, cfg.RequestTimeout(), cfg.Poll.HistorySessions)
	a.sched = scheduler.New(ctx, a.loop, fetcher, a.state, cfg.Interval(), initial, log)
	a.win = window.New(cat, a.state, a.sched, a.Quit, log)

	if cfg.Tray.Enabled && host != nil {
		icon, err := tray.LoadIcon(cfg.Tray.IconPath)
		if err != nil {
			log.Warnf("tray disabled, running windowed-only: %v", err)
		} else {
			a.tray = tray.New(host, icon, tray.Options{
				Title:    cfg.Tray.Title,
				Tooltip:  cfg.Tray.Tooltip,
				Interval: cfg.Interval(),
			}, a.loop, a.state, a.win.Show, a.Quit, log)
			a.win.AttachTray()
		}
	}
	return a, nil
}

// Start queues the first cycle and starts the tray goroutine. The loop must
// be drained afterwards, by Run or by the TUI.
func (a *App) Start() {
	a.loop.Post(a.sched.Start)
	if a.tray != nil {
		a.tray.Start()
	}
}

// Run drains the UI loop on the calling goroutine until Quit.
func (a *App) Run(ctx context.Context) { a.loop.Run(ctx) }

// Quit shuts down on the UI context: polling stops first, then the tray
// host, then the loop itself.
func (a *App) Quit() {
	if a.quitting {
		return
	}
	a.quitting = true
	a.log.Infof("shutting down")
	a.sched.Stop()
	if a.tray != nil {
		a.tray.Stop()
	}
	a.cancel()
	a.loop.Stop()
}

// RequestQuit is Quit for callers outside the UI context.
func (a *App) RequestQuit() { a.loop.Post(a.Quit) }

// Wait blocks until the tray goroutine returns or timeout elapses.
func (a *App) Wait(timeout time.Duration) bool {
	if a.tray == nil {
		return true
	}
	select {
	case <-a.tray.Done():
		return true
	case <-time.After(timeout):
		a.log.Warnf("tray did not stop within %s", timeout)
		return false
	}
}

func (a *App) Loop() *uiloop.Loop        { return a.loop }
func (a *App) Window() *window.Presenter { return a.win }
func (a *App) State() *display.State     { return a.state }
func (a *App) HasTray() bool             { return a.tray != nil }
