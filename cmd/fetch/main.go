package main

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "os"
    "strings"
    "time"

    "stocktracker/internal/app"
    "stocktracker/internal/calc"
    "stocktracker/internal/catalog"
    "stocktracker/internal/config"
    "stocktracker/internal/logger"
    "stocktracker/internal/provider"
)

// fetch runs one cycle for every configured instrument (or the names in
// STOCKTRACKER_NAMES) and prints the results as JSON. It shares the config
// and source chain with the tracker and is meant for checking connectivity.

type reading struct {
    Name            string `json:"name"`
    Symbol          string `json:"symbol"`
    Price           string `json:"price,omitempty"`
    PreviousClose   string `json:"previous_close,omitempty"`
    PriorClose      string `json:"prior_close,omitempty"`
    ChangeToday     string `json:"change_today,omitempty"`
    ChangeYesterday string `json:"change_yesterday,omitempty"`
    Error           string `json:"error,omitempty"`
}

func main() {
    cfg, err := config.Load(os.Getenv("STOCKTRACKER_CONFIG"))
    if err != nil { log.Fatalf("config: %v", err) }

    lg, syncLog, err := logger.NewZapLogger(logger.Level(getenv("STOCKTRACKER_LOG_LEVEL", "warn")), "")
    if err != nil { log.Fatalf("logger: %v", err) }
    defer syncLog()

    cat, err := catalog.New(cfg.Instruments)
    if err != nil { log.Fatalf("instruments: %v", err) }

    var insts []catalog.Instrument
    if names := splitCSV(os.Getenv("STOCKTRACKER_NAMES")); len(names) > 0 {
        for _, n := range names {
            inst, err := cat.Lookup(n)
            if err != nil { log.Fatalf("%v", err) }
            insts = append(insts, inst)
        }
    } else {
        for i := 0; i < cat.Len(); i++ {
            insts = append(insts, cat.At(i))
        }
    }

    src, err := app.BuildSource(cfg, lg)
    if err != nil { log.Fatalf("source: %v", err) }
    fetcher := provider.NewQuoteFetcher(src, cfg.RequestTimeout(), cfg.Poll.HistorySessions)

    ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.RequestTimeout()+time.Duration(len(insts))*time.Second)
    defer cancel()

    type result struct {
        i int
        r reading
    }
    ch := make(chan result, len(insts))
    for i, inst := range insts {
        go func() {
            ch <- result{i: i, r: read(ctx, fetcher, inst)}
        }()
    }

    out := make([]reading, len(insts))
    failed := 0
    for range insts {
        res := <-ch
        if res.r.Error != "" {
            failed++
            log.Printf("%s error: %s", res.r.Name, res.r.Error)
        }
        out[res.i] = res.r
    }

    b, _ := json.MarshalIndent(struct{ Readings []reading `json:"readings"` }{Readings: out}, "", "  ")
    fmt.Println(string(b))
    if failed == len(insts) {
        os.Exit(1)
    }
}

func read(ctx context.Context, f *provider.QuoteFetcher, inst catalog.Instrument) reading {
    r := reading{Name: inst.Name, Symbol: inst.Symbol}
    q, err := f.Fetch(ctx, inst.Symbol)
    if err != nil {
        r.Error = err.Error()
        return r
    }
    m, err := calc.Derive(q)
    if err != nil {
        r.Error = err.Error()
        return r
    }
    r.Price = q.CurrentPrice.StringFixed(2)
    r.PreviousClose = q.PreviousClose.StringFixed(2)
    r.PriorClose = q.PriorClose.StringFixed(2)
    r.ChangeToday = calc.FormatPct(m.ChangeToday)
    r.ChangeYesterday = calc.FormatPct(m.ChangeYesterday)
    return r
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
