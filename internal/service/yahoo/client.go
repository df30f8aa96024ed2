package yahoo

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"AllocDesk/internal/domain/models"
	xhttp "AllocDesk/pkg/http"
)

// Client fetches daily adjusted closes and FX spot rates from the Yahoo
// Finance chart API.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// New creates a Yahoo chart client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns the adjusted daily close series for symbol covering the
// last rangeDays calendar days. Null observations are dropped, never
// zero-filled. On any fault the series is empty and the error explains why.
func (c *Client) History(ctx context.Context, symbol string, rangeDays int) (models.PriceSeries, error) {
	out := models.PriceSeries{Symbol: symbol}

	now := time.Now()
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, symbol),
		Headers: map[string]string{
			"User-Agent": userAgent,
		},
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(now.AddDate(0, 0, -rangeDays).Unix(), 10)},
			"period2":  {strconv.FormatInt(now.Unix(), 10)},
			"interval": {"1d"},
		},
	}, &resp)
	if err != nil {
		return out, fmt.Errorf("yahoo history %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return out, fmt.Errorf("yahoo history %s: %s", symbol, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 {
		return out, fmt.Errorf("yahoo history %s: empty result", symbol)
	}

	res := resp.Chart.Result[0]
	closes := adjustedCloses(res.Indicators.Adjclose, res.Indicators.Quote)
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		p := *closes[i]
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		out.Points = append(out.Points, models.PricePoint{
			Time:  time.Unix(ts, 0).UTC(),
			Price: p,
		})
	}
	return out, nil
}

// Spot returns the latest rate for an FX pair symbol such as "KRW=X".
func (c *Client) Spot(ctx context.Context, pair string) (float64, error) {
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, pair),
		Headers: map[string]string{
			"User-Agent": userAgent,
		},
		QueryParams: map[string][]string{
			"range":    {"5d"},
			"interval": {"1d"},
		},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("yahoo spot %s: %w", pair, err)
	}

	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 {
		return 0, fmt.Errorf("yahoo spot %s: empty result", pair)
	}

	res := resp.Chart.Result[0]
	if r := res.Meta.RegularMarketPrice; r > 0 && !math.IsNaN(r) && !math.IsInf(r, 0) {
		return r, nil
	}

	// meta missing: fall back to the last non-null close
	closes := adjustedCloses(res.Indicators.Adjclose, res.Indicators.Quote)
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil && *closes[i] > 0 {
			return *closes[i], nil
		}
	}
	return 0, fmt.Errorf("yahoo spot %s: no usable rate", pair)
}

// adjustedCloses prefers the adjclose track and falls back to raw closes
// when the payload omits it (some FX and index symbols do).
func adjustedCloses(adj []struct {
	Adjclose []*float64 `json:"adjclose"`
}, quote []struct {
	Close []*float64 `json:"close"`
}) []*float64 {
	if len(adj) > 0 && len(adj[0].Adjclose) > 0 {
		return adj[0].Adjclose
	}
	if len(quote) > 0 {
		return quote[0].Close
	}
	return nil
}

// Yahoo rejects requests without a browser-like agent.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
