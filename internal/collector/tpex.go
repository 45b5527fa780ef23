package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"StockScreener/internal/model"
)

// DefaultTPEXURL is the TPEX OpenAPI mainboard daily close quotes endpoint.
const DefaultTPEXURL = "https://www.tpex.org.tw/openapi/v1/tpex_mainboard_daily_close_quotes"

// TPEXFetcher implements QuoteSource for the over-the-counter market.
type TPEXFetcher struct {
	URL string
	httpSource
}

// NewTPEXFetcher creates an OTC fetcher with optional proxy and rate limit.
func NewTPEXFetcher(url, proxyURL string, timeout time.Duration, rps float64) *TPEXFetcher {
	if url == "" {
		url = DefaultTPEXURL
	}
	return &TPEXFetcher{URL: url, httpSource: newHTTPSource(proxyURL, timeout, rps)}
}

func (f *TPEXFetcher) Name() string { return "tpex" }

// tpexRow is one entry of tpex_mainboard_daily_close_quotes.
type tpexRow struct {
	Code              string `json:"SecuritiesCompanyCode"`
	Name              string `json:"CompanyName"`
	Close             string `json:"Close"`
	Change            string `json:"Change"`
	TradingShares     string `json:"TradingShares"`
	TransactionAmount string `json:"TransactionAmount"`
}

func (f *TPEXFetcher) FetchQuotes(ctx context.Context, _ model.TimeSlot) ([]model.Quote, error) {
	body, err := f.get(ctx, f.URL)
	if err != nil {
		return nil, err
	}
	var rows []tpexRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode tpex: %w", err)
	}

	quotes := make([]model.Quote, 0, len(rows))
	for _, r := range rows {
		code := strings.TrimSpace(r.Code)
		if !isListedCode(code) {
			continue
		}
		closePrice, ok := parseNumber(r.Close)
		if !ok || closePrice <= 0 {
			continue
		}
		volume, _ := parseNumber(r.TradingShares)
		if volume <= 0 {
			continue
		}
		change, _ := parseNumber(r.Change)
		value, ok := parseNumber(r.TransactionAmount)
		if !ok || value <= 0 {
			value = volume * closePrice
		}
		quotes = append(quotes, model.Quote{
			Code:          code,
			Name:          strings.TrimSpace(r.Name),
			Close:         closePrice,
			ChangePercent: changePercent(closePrice, change),
			TradeValue:    value,
		})
	}
	return quotes, nil
}
