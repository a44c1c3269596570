package main

import (
    "context"
    "errors"
    "log"
    "os"
    "os/signal"
    "syscall"
    "time"

    tea "github.com/charmbracelet/bubbletea"

    "stocktracker/internal/app"
    "stocktracker/internal/config"
    "stocktracker/internal/logger"
    "stocktracker/internal/tray"
    "stocktracker/internal/tui"
)

func main() {
    // Config
    cfg, err := config.Load(os.Getenv("STOCKTRACKER_CONFIG"))
    if err != nil { log.Fatalf("config: %v", err) }

    // The TUI owns the terminal, so logs go to a file.
    lg, syncLog, err := logger.NewZapLogger(logger.Level(cfg.Log.Level), cfg.Log.File)
    if err != nil { log.Fatalf("logger: %v", err) }
    defer syncLog()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    src, err := app.BuildSource(cfg, lg)
    if err != nil { lg.Fatalf("source: %v", err) }

    var host tray.Host
    if cfg.Tray.Enabled {
        host = tray.NewSystrayHost()
    }
    a, err := app.New(context.Background(), cfg, src, host, lg)
    if err != nil { lg.Fatalf("app: %v", err) }

    // Signals take the same path as the tray's Quit.
    go func() {
        <-ctx.Done()
        a.RequestQuit()
    }()

    a.Start()
    lg.Infof("stocktracker started: ui=%s tray=%v interval=%s", cfg.UI.Mode, a.HasTray(), cfg.Interval())

    switch cfg.UI.Mode {
    case "headless":
        a.Run(context.Background())
    default:
        m := tui.New(context.Background(), a.Loop(), a.Window(), cfg.Interval())
        if _, err := tui.Program(m).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
            lg.Errorf("tui: %v", err)
            a.RequestQuit()
            a.Run(context.Background())
        }
    }

    a.Wait(3 * time.Second)
    lg.Infof("stopped")
}
