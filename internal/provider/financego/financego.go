// Package financego adapts github.com/piquette/finance-go to provider.Source.
package financego

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"stocktracker/internal/provider"
)

type (
	quoteFunc func(symbol string) (*finance.Quote, error)
	barsFunc  func(symbol string, start, end time.Time) ([]finance.ChartBar, error)
)

// Source reads quotes through finance-go. The library is blocking and has no
// context support, so every call runs on its own goroutine and is abandoned
// when ctx ends.
type Source struct {
	quote quoteFunc
	bars  barsFunc
	now   func() time.Time
}

func New() *Source {
	return &Source{quote: quote.Get, bars: dailyBars, now: time.Now}
}

func (s *Source) Name() string { return "financego" }

// History returns daily closes of completed sessions, oldest first. The bar
// belonging to the session of the latest regular market trade is dropped.
func (s *Source) History(ctx context.Context, symbol string, sessions int) ([]provider.Close, error) {
	if sessions < 2 {
		sessions = 2
	}
	end := s.now().UTC()
	// calendar days; weekends and holidays eat into the window
	start := end.AddDate(0, 0, -(sessions*7/5 + 3))

	q, err := call(ctx, func() (*finance.Quote, error) { return s.quote(symbol) })
	if err != nil {
		return nil, wrap(symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnknownInstrument, symbol)
	}
	bars, err := call(ctx, func() ([]finance.ChartBar, error) { return s.bars(symbol, start, end) })
	if err != nil {
		return nil, wrap(symbol, err)
	}

	var current string
	if q.RegularMarketTime > 0 {
		current = time.Unix(int64(q.RegularMarketTime), 0).UTC().Format(time.DateOnly)
	}
	out := make([]provider.Close, 0, len(bars))
	for _, b := range bars {
		if !b.Close.IsPositive() {
			continue
		}
		day := time.Unix(int64(b.Timestamp), 0).UTC()
		if day.Format(time.DateOnly) == current {
			continue
		}
		out = append(out, provider.Close{Date: day, Price: b.Close})
	}
	if len(out) > sessions {
		out = out[len(out)-sessions:]
	}
	return out, nil
}

// Intraday returns the regular market price from the quote endpoint.
func (s *Source) Intraday(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	q, err := call(ctx, func() (*finance.Quote, error) { return s.quote(symbol) })
	if err != nil {
		return decimal.Decimal{}, false, wrap(symbol, err)
	}
	if q == nil {
		return decimal.Decimal{}, false, fmt.Errorf("%w: %s", provider.ErrUnknownInstrument, symbol)
	}
	if q.RegularMarketPrice <= 0 {
		return decimal.Decimal{}, false, nil
	}
	return decimal.NewFromFloat(q.RegularMarketPrice), true, nil
}

func dailyBars(symbol string, start, end time.Time) ([]finance.ChartBar, error) {
	it := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	var bars []finance.ChartBar
	for it.Next() {
		bars = append(bars, *it.Bar())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

type result[T any] struct {
	v   T
	err error
}

func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

func wrap(symbol string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no data") {
		return fmt.Errorf("%w: %s: %v", provider.ErrUnknownInstrument, symbol, err)
	}
	return fmt.Errorf("%w: %s: %v", provider.ErrProviderUnavailable, symbol, err)
}
