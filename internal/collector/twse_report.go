package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StockScreener/internal/model"
)

// DefaultReportURL is the legacy TWSE exchange report endpoint.
const DefaultReportURL = "https://www.twse.com.tw/exchangeReport/STOCK_DAY_ALL?response=json"

// Column headers of the legacy report.
const (
	colCode   = "證券代號"
	colName   = "證券名稱"
	colVolume = "成交股數"
	colValue  = "成交金額"
	colClose  = "收盤價"
	colChange = "漲跌價差"
	colSign   = "漲跌(+/-)" // "+" / "-" wrapped in HTML; 漲跌價差 is unsigned
)

// ReportFetcher implements QuoteSource using the legacy exchangeReport
// table format. It is structurally independent of the OpenAPI feed.
type ReportFetcher struct {
	URL string
	httpSource
}

// NewReportFetcher creates a legacy report fetcher.
func NewReportFetcher(url, proxyURL string, timeout time.Duration, rps float64) *ReportFetcher {
	if url == "" {
		url = DefaultReportURL
	}
	return &ReportFetcher{URL: url, httpSource: newHTTPSource(proxyURL, timeout, rps)}
}

func (f *ReportFetcher) Name() string { return "twse_report" }

type reportTable struct {
	Stat   string     `json:"stat"`
	Date   string     `json:"date"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

func (f *ReportFetcher) FetchQuotes(ctx context.Context, _ model.TimeSlot) ([]model.Quote, error) {
	body, err := f.get(ctx, f.URL)
	if err != nil {
		return nil, err
	}
	var table reportTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if table.Stat != "" && table.Stat != "OK" {
		return nil, fmt.Errorf("report stat: %s", table.Stat)
	}
	return parseReportTable(table), nil
}

func parseReportTable(table reportTable) []model.Quote {
	idx := make(map[string]int, len(table.Fields))
	for i, name := range table.Fields {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range []string{colCode, colName, colClose} {
		if _, ok := idx[col]; !ok {
			return nil
		}
	}
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return cellText(row[i])
	}

	quotes := make([]model.Quote, 0, len(table.Data))
	for _, row := range table.Data {
		code := cell(row, colCode)
		if !isListedCode(code) {
			continue
		}
		closePrice, ok := parseNumber(cell(row, colClose))
		if !ok || closePrice <= 0 {
			continue
		}
		volume, _ := parseNumber(cell(row, colVolume))
		change, _ := parseNumber(cell(row, colChange))
		if strings.Contains(cell(row, colSign), "-") && change > 0 {
			change = -change
		}
		value, ok := parseNumber(cell(row, colValue))
		if !ok {
			value = volume * closePrice
		}
		quotes = append(quotes, model.Quote{
			Code:          code,
			Name:          cell(row, colName),
			Close:         closePrice,
			ChangePercent: changePercent(closePrice, change),
			TradeValue:    value,
		})
	}
	return quotes
}

// cellText returns the visible text of a report cell, which may carry
// inline markup such as <p style= color:red>+</p>.
func cellText(cell string) string {
	if !strings.Contains(cell, "<") {
		return strings.TrimSpace(cell)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return strings.TrimSpace(cell)
	}
	return strings.TrimSpace(doc.Text())
}
