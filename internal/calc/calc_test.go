package calc_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stocktracker/internal/calc"
	"stocktracker/internal/provider"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDerive(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		quote     provider.RawQuote
		today     string
		yesterday string
	}{
		{
			name:      "apple example",
			quote:     provider.RawQuote{PreviousClose: d("150.00"), PriorClose: d("148.00"), CurrentPrice: d("151.50")},
			today:     "1.00%",
			yesterday: "1.35%",
		},
		{
			name:      "falling",
			quote:     provider.RawQuote{PreviousClose: d("100"), PriorClose: d("125"), CurrentPrice: d("90")},
			today:     "-10.00%",
			yesterday: "-20.00%",
		},
		{
			name:      "no intraday price",
			quote:     provider.RawQuote{PreviousClose: d("410"), PriorClose: d("400"), CurrentPrice: d("410")},
			today:     "0.00%",
			yesterday: "2.50%",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Act
			m, err := calc.Derive(tc.quote)

			// Assert
			require.NoError(t, err)
			require.Equal(t, tc.today, calc.FormatPct(m.ChangeToday))
			require.Equal(t, tc.yesterday, calc.FormatPct(m.ChangeYesterday))
		})
	}
}

func TestDerive_IsPure(t *testing.T) {
	t.Parallel()

	q := provider.RawQuote{PreviousClose: d("150"), PriorClose: d("148"), CurrentPrice: d("151.5")}
	a, errA := calc.Derive(q)
	b, errB := calc.Derive(q)
	require.NoError(t, errA)
	require.NoError(t, errB)
	require.True(t, a.ChangeToday.Equal(b.ChangeToday))
	require.True(t, a.ChangeYesterday.Equal(b.ChangeYesterday))
}

func TestDerive_ZeroReference(t *testing.T) {
	t.Parallel()

	_, err := calc.Derive(provider.RawQuote{PreviousClose: d("0"), PriorClose: d("1"), CurrentPrice: d("1")})
	require.ErrorIs(t, err, calc.ErrDegenerateQuote)

	_, err = calc.Derive(provider.RawQuote{PreviousClose: d("1"), PriorClose: decimal.Zero, CurrentPrice: d("1")})
	require.ErrorIs(t, err, calc.ErrDegenerateQuote)
}

func TestDirection(t *testing.T) {
	t.Parallel()

	require.Equal(t, calc.Up, calc.Direction(d("0.01")))
	require.Equal(t, calc.Down, calc.Direction(d("-0.01")))
	require.Equal(t, calc.Down, calc.Direction(decimal.Zero))
	require.Equal(t, "up", calc.Up.String())
}
