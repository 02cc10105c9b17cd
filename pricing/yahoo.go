package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// YahooURL is the public Yahoo Finance chart API.
	YahooURL = "https://query1.finance.yahoo.com"

	// GoldFutures is the Yahoo symbol for COMEX gold futures.
	GoldFutures = "GC=F"
)

// Yahoo reads the last traded price from the chart API.
type Yahoo struct {
	client
}

// NewYahoo returns a Yahoo client. An empty baseURL selects YahooURL.
func NewYahoo(baseURL string, timeout time.Duration) *Yahoo {
	if baseURL == "" {
		baseURL = YahooURL
	}
	return &Yahoo{client: newClient(strings.TrimRight(baseURL, "/"), timeout)}
}

// Price returns meta.regularMarketPrice for symbol, or the last close of
// the day's series when the market price is missing.
func (y *Yahoo) Price(ctx context.Context, symbol string) (float64, error) {
	if symbol == "" {
		return 0, unavailable(symbol, errors.New("symbol is required"))
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")
	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), params.Encode())

	doc, err := y.getJSON(ctx, apiURL)
	if err != nil {
		return 0, unavailable(symbol, err)
	}

	if p, err := lookupFloat(doc, "$.chart.result[0].meta.regularMarketPrice"); err == nil {
		return checkPrice(symbol, p)
	}

	closes, err := lookup(doc, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return 0, unavailable(symbol, err)
	}
	list, _ := closes.([]any)
	for i := len(list) - 1; i >= 0; i-- {
		if p, ok := list[i].(float64); ok {
			return checkPrice(symbol, p)
		}
	}
	return 0, unavailable(symbol, errors.New("no price in chart response"))
}
