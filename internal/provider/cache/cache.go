package cache

import (
    "context"
    "fmt"
    "sync"
    "time"

    "github.com/shopspring/decimal"
    "golang.org/x/sync/singleflight"

    "stocktracker/internal/provider"
)

// entry stores cached closes for a single symbol with expiry.
type entry struct {
    expiresAt time.Time
    sessions  int
    closes    []provider.Close
}

// Source caches History per symbol for a TTL. Daily closes only change once
// per session, so the poll loop mostly needs fresh intraday prices; Intraday
// is always passed through. Concurrent misses for one symbol share a single
// upstream call.
type Source struct {
    P        provider.Source
    TTL      time.Duration
    MaxItems int

    mu    sync.RWMutex
    items map[string]entry // key: symbol
    sf    singleflight.Group
    now   func() time.Time
}

func (c *Source) Name() string { return c.P.Name() }

func (c *Source) Intraday(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
    return c.P.Intraday(ctx, symbol)
}

func (c *Source) History(ctx context.Context, symbol string, sessions int) ([]provider.Close, error) {
    if c.TTL <= 0 {
        return c.P.History(ctx, symbol, sessions)
    }

    now := c.clock()
    c.mu.RLock()
    e, ok := c.items[symbol]
    c.mu.RUnlock()
    if ok && e.sessions >= sessions && now.Before(e.expiresAt) {
        return e.closes, nil
    }

    key := fmt.Sprintf("%s/%d", symbol, sessions)
    v, err, _ := c.sf.Do(key, func() (any, error) {
        return c.P.History(ctx, symbol, sessions)
    })
    if err != nil {
        return nil, err
    }
    closes := v.([]provider.Close)

    // Short histories are not cached: a newly listed instrument gains its
    // second close during the day and should show up on the next cycle.
    if len(closes) < 2 {
        return closes, nil
    }

    c.mu.Lock()
    if c.items == nil {
        c.items = make(map[string]entry)
    }
    c.items[symbol] = entry{expiresAt: c.clock().Add(c.TTL), sessions: sessions, closes: closes}
    // best-effort cap: expired first, then arbitrary
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        for k, v := range c.items {
            if len(c.items) <= c.MaxItems {
                break
            }
            if !now.Before(v.expiresAt) {
                delete(c.items, k)
            }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems {
                break
            }
            if k != symbol {
                delete(c.items, k)
            }
        }
    }
    c.mu.Unlock()
    return closes, nil
}

func (c *Source) clock() time.Time {
    if c.now != nil {
        return c.now()
    }
    return time.Now()
}
