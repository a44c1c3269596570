package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// QuoteFetcher turns a Source into RawQuotes. It holds no state besides its
// configuration and bounds every call with Timeout.
type QuoteFetcher struct {
	Source   Source
	Timeout  time.Duration
	Sessions int // daily lookback, at least 2
}

func NewQuoteFetcher(src Source, timeout time.Duration, sessions int) *QuoteFetcher {
	if sessions < 2 {
		sessions = 2
	}
	return &QuoteFetcher{Source: src, Timeout: timeout, Sessions: sessions}
}

// Fetch returns the last two daily closes and the latest price for symbol.
// It fails with ErrInsufficientHistory when fewer than two closes exist, with
// ErrUnknownInstrument when the provider rejects the symbol and with
// ErrProviderUnavailable for everything else.
func (f *QuoteFetcher) Fetch(ctx context.Context, symbol string) (RawQuote, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	var (
		closes   []Close
		intraday decimal.Decimal
		hasIntra bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		closes, err = f.Source.History(gctx, symbol, f.Sessions)
		return err
	})
	g.Go(func() error {
		var err error
		intraday, hasIntra, err = f.Source.Intraday(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return RawQuote{}, classify(f.Source.Name(), symbol, err)
	}

	if len(closes) < 2 {
		return RawQuote{}, fmt.Errorf("%s: %w: %d closes", symbol, ErrInsufficientHistory, len(closes))
	}
	q := RawQuote{
		PreviousClose: closes[len(closes)-1].Price,
		PriorClose:    closes[len(closes)-2].Price,
	}
	q.CurrentPrice = q.PreviousClose
	if hasIntra {
		q.CurrentPrice = intraday
	}
	return q, nil
}

// classify makes sure every error leaving the fetcher matches one of the
// provider sentinels.
func classify(source, symbol string, err error) error {
	if errors.Is(err, ErrUnknownInstrument) || errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrInsufficientHistory) {
		return fmt.Errorf("%s %s: %w", source, symbol, err)
	}
	return fmt.Errorf("%s %s: %w: %v", source, symbol, ErrProviderUnavailable, err)
}
