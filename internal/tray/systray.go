package tray

import (
	"runtime"
	"sync"

	"fyne.io/systray"
)

// SystrayHost drives fyne.io/systray. On macOS the tray must own the main
// thread; elsewhere any locked OS thread works.
type SystrayHost struct {
	mu    sync.Mutex
	ready bool
	quit  bool
}

func NewSystrayHost() *SystrayHost { return &SystrayHost{} }

func (h *SystrayHost) Run(menu Menu) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	systray.Run(func() { h.onReady(menu) }, func() {})
}

func (h *SystrayHost) onReady(menu Menu) {
	if len(menu.Icon) > 0 {
		systray.SetIcon(menu.Icon)
	}
	systray.SetTitle(menu.Title)
	systray.SetTooltip(menu.Tooltip)
	if menu.OnTapped != nil {
		systray.SetOnTapped(menu.OnTapped)
	}
	for _, item := range menu.Items {
		mi := systray.AddMenuItem(item.Label, item.Tooltip)
		go func(click func()) {
			for range mi.ClickedCh {
				click()
			}
		}(item.OnClick)
	}

	h.mu.Lock()
	h.ready = true
	quit := h.quit
	h.mu.Unlock()
	if quit {
		systray.Quit()
	}
}

func (h *SystrayHost) SetTooltip(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ready && !h.quit {
		systray.SetTooltip(text)
	}
}

// Quit may arrive before the tray is ready; it is then applied in onReady.
func (h *SystrayHost) Quit() {
	h.mu.Lock()
	ready := h.ready
	h.quit = true
	h.mu.Unlock()
	if ready {
		systray.Quit()
	}
}
