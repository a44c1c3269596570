package config

import (
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    "gopkg.in/yaml.v3"

    "stocktracker/internal/catalog"
)

type Poll struct {
    IntervalSec       int `yaml:"interval_sec"`
    RequestTimeoutSec int `yaml:"request_timeout_sec"`
    // HistorySessions is the daily lookback requested from the provider.
    // At least two sessions are needed; a wider window survives weekends and holidays.
    HistorySessions int `yaml:"history_sessions"`
}

type Provider struct {
    Primary              string `yaml:"primary"`  // yahoo | financego
    Fallback             bool   `yaml:"fallback"` // use the other source when the primary is unavailable
    YahooEndpoint        string `yaml:"yahoo_endpoint"`
    UserAgent            string `yaml:"user_agent"`
    MinRequestIntervalMs int    `yaml:"min_request_interval_ms"`
    HistoryCacheTTLSec   int    `yaml:"history_cache_ttl_sec"`
}

type Tray struct {
    Enabled  bool   `yaml:"enabled"`
    IconPath string `yaml:"icon_path"`
    Title    string `yaml:"title"`
    Tooltip  string `yaml:"tooltip"`
}

type UI struct {
    Mode string `yaml:"mode"` // tui | headless
}

type Log struct {
    Level string `yaml:"level"`
    File  string `yaml:"file"`
}

type Config struct {
    Poll              Poll                 `yaml:"poll"`
    Provider          Provider             `yaml:"provider"`
    Instruments       []catalog.Instrument `yaml:"instruments"`
    DefaultInstrument string               `yaml:"default_instrument"`
    Tray              Tray                 `yaml:"tray"`
    UI                UI                   `yaml:"ui"`
    Log               Log                  `yaml:"log"`
}

func Default() Config {
    return Config{
        Poll: Poll{IntervalSec: 10, RequestTimeoutSec: 8, HistorySessions: 5},
        Provider: Provider{
            Primary:              "yahoo",
            Fallback:             true,
            YahooEndpoint:        "https://query1.finance.yahoo.com",
            UserAgent:            "stocktracker/1.0",
            MinRequestIntervalMs: 500,
            HistoryCacheTTLSec:   60,
        },
        Instruments: []catalog.Instrument{
            {Name: "S&P 500", Symbol: "^GSPC", Currency: "USD"},
            {Name: "Apple", Symbol: "AAPL", Currency: "USD"},
            {Name: "Microsoft", Symbol: "MSFT", Currency: "USD"},
            {Name: "Nvidia", Symbol: "NVDA", Currency: "USD"},
            {Name: "Google (Alphabet)", Symbol: "GOOGL", Currency: "USD"},
            {Name: "Amazon", Symbol: "AMZN", Currency: "USD"},
            {Name: "Meta (Facebook)", Symbol: "META", Currency: "USD"},
            {Name: "Tesla", Symbol: "TSLA", Currency: "USD"},
        },
        DefaultInstrument: "S&P 500",
        Tray: Tray{
            Enabled:  true,
            IconPath: "tendencia.png",
            Title:    "Stock Tracker",
            Tooltip:  "Stock Tracker",
        },
        UI:  UI{Mode: "tui"},
        Log: Log{Level: "info", File: "stocktracker.log"},
    }
}

// Load reads a YAML (or JSON) config from path. If path is empty and no
// stocktracker.yaml exists, defaults are used. Environment variables override
// select fields afterwards.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("stocktracker.yaml"); err == nil {
            path = "stocktracker.yaml"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := yaml.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    if err := applyEnv(&cfg); err != nil {
        return cfg, err
    }
    if err := cfg.Validate(); err != nil {
        return cfg, err
    }
    return cfg, nil
}

func (c Config) Validate() error {
    if c.Poll.IntervalSec <= 0 {
        return fmt.Errorf("poll.interval_sec must be positive, got %d", c.Poll.IntervalSec)
    }
    if c.Poll.RequestTimeoutSec <= 0 {
        return fmt.Errorf("poll.request_timeout_sec must be positive, got %d", c.Poll.RequestTimeoutSec)
    }
    if c.Poll.HistorySessions < 2 {
        return fmt.Errorf("poll.history_sessions must be at least 2, got %d", c.Poll.HistorySessions)
    }
    switch c.Provider.Primary {
    case "yahoo", "financego":
    default:
        return fmt.Errorf("provider.primary: unknown source %q", c.Provider.Primary)
    }
    cat, err := catalog.New(c.Instruments)
    if err != nil {
        return fmt.Errorf("instruments: %w", err)
    }
    if _, err := cat.Lookup(c.DefaultInstrument); err != nil {
        return fmt.Errorf("default_instrument: %w", err)
    }
    switch c.UI.Mode {
    case "tui", "headless":
    default:
        return fmt.Errorf("ui.mode: unknown mode %q", c.UI.Mode)
    }
    return nil
}

func (c Config) Interval() time.Duration { return time.Duration(c.Poll.IntervalSec) * time.Second }

func (c Config) RequestTimeout() time.Duration {
    return time.Duration(c.Poll.RequestTimeoutSec) * time.Second
}

func applyEnv(cfg *Config) error {
    if v := os.Getenv("STOCKTRACKER_INTERVAL_SEC"); v != "" {
        var x int
        if _, err := fmt.Sscanf(v, "%d", &x); err != nil || x <= 0 {
            return fmt.Errorf("invalid STOCKTRACKER_INTERVAL_SEC: %q", v)
        }
        cfg.Poll.IntervalSec = x
    }
    if v := os.Getenv("STOCKTRACKER_REQUEST_TIMEOUT_SEC"); v != "" {
        var x int
        if _, err := fmt.Sscanf(v, "%d", &x); err != nil || x <= 0 {
            return fmt.Errorf("invalid STOCKTRACKER_REQUEST_TIMEOUT_SEC: %q", v)
        }
        cfg.Poll.RequestTimeoutSec = x
    }
    if v := os.Getenv("STOCKTRACKER_PROVIDER"); v != "" { cfg.Provider.Primary = strings.ToLower(v) }
    if v := os.Getenv("STOCKTRACKER_ICON"); v != "" { cfg.Tray.IconPath = v }
    if v := os.Getenv("STOCKTRACKER_TRAY"); v != "" {
        switch strings.ToLower(v) {
        case "1", "true", "yes", "y": cfg.Tray.Enabled = true
        case "0", "false", "no", "n": cfg.Tray.Enabled = false
        }
    }
    if v := os.Getenv("STOCKTRACKER_UI"); v != "" { cfg.UI.Mode = strings.ToLower(v) }
    if v := os.Getenv("STOCKTRACKER_LOG_LEVEL"); v != "" { cfg.Log.Level = v }
    if v := os.Getenv("STOCKTRACKER_LOG_FILE"); v != "" { cfg.Log.File = v }
    return nil
}
