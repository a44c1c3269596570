package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Fallback asks its sources in order and returns the first answer that is
// not a transient failure. A symbol rejected by a source is final: the
// other sources are not asked, since the catalog maps one symbol per name.
type Fallback struct {
	sources []Source
}

func NewFallback(sources ...Source) *Fallback {
	return &Fallback{sources: sources}
}

func (f *Fallback) Name() string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "|")
}

func (f *Fallback) History(ctx context.Context, symbol string, sessions int) ([]Close, error) {
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("%w: no market sources configured", ErrProviderUnavailable)
	}
	var lastErr error
	for _, s := range f.sources {
		closes, err := s.History(ctx, symbol, sessions)
		if err == nil {
			return closes, nil
		}
		if errors.Is(err, ErrUnknownInstrument) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (f *Fallback) Intraday(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	if len(f.sources) == 0 {
		return decimal.Decimal{}, false, fmt.Errorf("%w: no market sources configured", ErrProviderUnavailable)
	}
	var lastErr error
	for _, s := range f.sources {
		price, ok, err := s.Intraday(ctx, symbol)
		if err == nil {
			return price, ok, nil
		}
		if errors.Is(err, ErrUnknownInstrument) || ctx.Err() != nil {
			return decimal.Decimal{}, false, err
		}
		lastErr = err
	}
	return decimal.Decimal{}, false, lastErr
}
