package provider

import (
    "context"
    "errors"
    "time"

    "github.com/shopspring/decimal"
)

var (
    // ErrProviderUnavailable covers unreachable providers, bad statuses,
    // malformed payloads and timeouts. Transient.
    ErrProviderUnavailable = errors.New("provider unavailable")
    // ErrUnknownInstrument means the provider rejected the symbol.
    ErrUnknownInstrument = errors.New("unknown instrument")
    // ErrInsufficientHistory is the expected empty outcome: fewer than two
    // daily closes exist for the symbol.
    ErrInsufficientHistory = errors.New("insufficient history")
)

// Close is one daily closing price.
type Close struct {
    Date  time.Time
    Price decimal.Decimal
}

// RawQuote is what a cycle needs to derive its metrics.
type RawQuote struct {
    PreviousClose decimal.Decimal // last completed session
    PriorClose    decimal.Decimal // session before PreviousClose
    CurrentPrice  decimal.Decimal
}

// Source is the market-data provider boundary.
//
//go:generate mockgen -package=provider_test -destination=mock_source_test.go -source=provider.go Source
type Source interface {
    Name() string
    // History returns daily closes ordered oldest first, covering at least
    // the last `sessions` trading sessions when the provider has them.
    History(ctx context.Context, symbol string, sessions int) ([]Close, error)
    // Intraday returns the latest traded price; ok is false when the
    // provider has none (market closed, no ticks yet).
    Intraday(ctx context.Context, symbol string) (price decimal.Decimal, ok bool, err error)
}
