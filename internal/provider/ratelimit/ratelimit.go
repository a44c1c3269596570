package ratelimit

import (
    "context"
    "sync"
    "time"

    "github.com/shopspring/decimal"

    "stocktracker/internal/provider"
)

// MinInterval wraps a source and keeps at least Interval between upstream
// calls. History and Intraday share the gate. A waiting call returns early
// when its context ends.
type MinInterval struct {
    Source   provider.Source
    Interval time.Duration

    mu   sync.Mutex
    next time.Time // earliest start of the next call
}

func (m *MinInterval) Name() string { return m.Source.Name() }

func (m *MinInterval) History(ctx context.Context, symbol string, sessions int) ([]provider.Close, error) {
    if err := m.wait(ctx); err != nil {
        return nil, err
    }
    return m.Source.History(ctx, symbol, sessions)
}

func (m *MinInterval) Intraday(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
    if err := m.wait(ctx); err != nil {
        return decimal.Decimal{}, false, err
    }
    return m.Source.Intraday(ctx, symbol)
}

// wait reserves the next slot and sleeps until it starts.
func (m *MinInterval) wait(ctx context.Context) error {
    if m.Interval <= 0 {
        return nil
    }
    m.mu.Lock()
    now := time.Now()
    slot := m.next
    if slot.Before(now) {
        slot = now
    }
    m.next = slot.Add(m.Interval)
    m.mu.Unlock()

    d := time.Until(slot)
    if d <= 0 {
        return nil
    }
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}
