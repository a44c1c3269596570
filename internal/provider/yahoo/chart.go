package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/internal/provider"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			// Yahoo reports gaps as null.
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Currency             string   `json:"currency"`
	Symbol               string   `json:"symbol"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	CurrentTradingPeriod struct {
		Regular struct {
			Start int64 `json:"start"`
			End   int64 `json:"end"`
		} `json:"regular"`
	} `json:"currentTradingPeriod"`
}

// History returns completed daily closes, oldest first. The bar of the
// session that is currently trading (or closed today) is left out, so the
// last close is always the session before the current price.
func (c *Client) History(ctx context.Context, symbol string, sessions int) ([]provider.Close, error) {
	if sessions < 2 {
		sessions = 2
	}
	// one extra day covers the current session's bar that gets dropped
	res, err := c.chart(ctx, symbol, fmt.Sprintf("%dd", sessions+1), "1d")
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	sessionStart := res.Meta.CurrentTradingPeriod.Regular.Start
	var out []provider.Close
	for i, p := range closesOf(res) {
		if p == nil || i >= len(res.Timestamp) {
			continue
		}
		ts := res.Timestamp[i]
		if sessionStart > 0 && ts >= sessionStart {
			continue
		}
		out = append(out, provider.Close{
			Date:  time.Unix(ts, 0).UTC(),
			Price: decimal.NewFromFloat(*p),
		})
	}
	return out, nil
}

// Intraday returns the latest one-minute close, or the regular market price
// when the minute series is empty.
func (c *Client) Intraday(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	res, err := c.chart(ctx, symbol, "1d", "1m")
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	if res == nil {
		return decimal.Decimal{}, false, nil
	}
	closes := closesOf(res)
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil && *closes[i] > 0 {
			return decimal.NewFromFloat(*closes[i]), true, nil
		}
	}
	if p := res.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return decimal.NewFromFloat(*p), true, nil
	}
	return decimal.Decimal{}, false, nil
}

func closesOf(res *chartResult) []*float64 {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	return res.Indicators.Quote[0].Close
}

func (c *Client) chart(ctx context.Context, symbol, rng, interval string) (*chartResult, error) {
	query := url.Values{}
	query.Set("range", rng)
	query.Set("interval", interval)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(symbol), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", provider.ErrProviderUnavailable, err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: performing request: %v", provider.ErrProviderUnavailable, err)
	}
	defer res.Body.Close()

	var body chartResponse
	decodeErr := json.NewDecoder(io.LimitReader(res.Body, 4<<20)).Decode(&body)

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", provider.ErrUnknownInstrument, symbol)
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: rate limited", provider.ErrProviderUnavailable)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return nil, fmt.Errorf("%w: unexpected status code: %d", provider.ErrProviderUnavailable, res.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decoding chart response: %v", provider.ErrProviderUnavailable, decodeErr)
	}
	if e := body.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s: %s", provider.ErrUnknownInstrument, symbol, e.Description)
		}
		return nil, fmt.Errorf("%w: %s: %s", provider.ErrProviderUnavailable, e.Code, e.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, nil
	}
	return &body.Chart.Result[0], nil
}
