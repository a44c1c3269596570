// Package calc derives the two relative-change figures shown for a quote.
package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"stocktracker/internal/provider"
)

// ErrDegenerateQuote is returned when a reference close is zero or negative
// and a percentage against it has no meaning.
var ErrDegenerateQuote = errors.New("degenerate quote")

var hundred = decimal.NewFromInt(100)

// Metrics holds percentage changes, e.g. 1.35 for +1.35%.
type Metrics struct {
	ChangeToday     decimal.Decimal
	ChangeYesterday decimal.Decimal
}

// Derive computes
//
//	ChangeToday     = (current - previous) / previous * 100
//	ChangeYesterday = (previous - prior) / prior * 100
func Derive(q provider.RawQuote) (Metrics, error) {
	if !q.PreviousClose.IsPositive() || !q.PriorClose.IsPositive() {
		return Metrics{}, fmt.Errorf("%w: previous=%s prior=%s", ErrDegenerateQuote, q.PreviousClose, q.PriorClose)
	}
	return Metrics{
		ChangeToday:     pct(q.CurrentPrice, q.PreviousClose),
		ChangeYesterday: pct(q.PreviousClose, q.PriorClose),
	}, nil
}

func pct(now, ref decimal.Decimal) decimal.Decimal {
	return now.Sub(ref).Div(ref).Mul(hundred)
}

// Trend decides how a change is coloured.
type Trend int

const (
	Down Trend = iota
	Up
)

func (t Trend) String() string {
	if t == Up {
		return "up"
	}
	return "down"
}

// Direction colours a change. Only strictly positive changes count as Up;
// an unchanged price is shown as Down.
func Direction(pct decimal.Decimal) Trend {
	if pct.IsPositive() {
		return Up
	}
	return Down
}

// FormatPct renders pct with two decimals and a percent sign, e.g. "1.35%".
func FormatPct(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}
