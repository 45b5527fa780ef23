package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"StockScreener/internal/model"
)

// DefaultOpenAPIURL is the TWSE OpenAPI daily all-stocks endpoint.
const DefaultOpenAPIURL = "https://openapi.twse.com.tw/v1/exchangeReport/STOCK_DAY_ALL"

// OpenAPIFetcher implements QuoteSource using the TWSE OpenAPI.
type OpenAPIFetcher struct {
	URL string
	httpSource
}

// NewOpenAPIFetcher creates a fetcher with optional proxy and rate limit.
func NewOpenAPIFetcher(url, proxyURL string, timeout time.Duration, rps float64) *OpenAPIFetcher {
	if url == "" {
		url = DefaultOpenAPIURL
	}
	return &OpenAPIFetcher{URL: url, httpSource: newHTTPSource(proxyURL, timeout, rps)}
}

func (f *OpenAPIFetcher) Name() string { return "twse_openapi" }

// openAPIRow is the JSON shape of one STOCK_DAY_ALL entry. Every field is a string.
type openAPIRow struct {
	Code         string `json:"Code"`
	Name         string `json:"Name"`
	TradeVolume  string `json:"TradeVolume"`
	TradeValue   string `json:"TradeValue"`
	ClosingPrice string `json:"ClosingPrice"`
	Change       string `json:"Change"`
}

func (f *OpenAPIFetcher) FetchQuotes(ctx context.Context, _ model.TimeSlot) ([]model.Quote, error) {
	body, err := f.get(ctx, f.URL)
	if err != nil {
		return nil, err
	}
	var rows []openAPIRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode openapi: %w", err)
	}

	quotes := make([]model.Quote, 0, len(rows))
	for _, r := range rows {
		code := strings.TrimSpace(r.Code)
		if !isListedCode(code) {
			continue
		}
		closePrice, ok := parseNumber(r.ClosingPrice)
		if !ok || closePrice <= 0 {
			continue
		}
		volume, _ := parseNumber(r.TradeVolume)
		if volume <= 0 {
			continue
		}
		change, _ := parseNumber(r.Change)
		value, ok := parseNumber(r.TradeValue)
		if !ok {
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
