package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StockScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Quotes []model.Quote
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuotes(_ context.Context, _ model.TimeSlot) ([]model.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Quotes != nil {
		return append([]model.Quote(nil), m.Quotes...), nil
	}
	return generateMockQuotes(), nil
}

// generateMockQuotes returns a deterministic large-cap snapshot.
func generateMockQuotes() []model.Quote {
	base := []struct {
		code, name string
		price      float64
		change     float64
		volume     float64
	}{
		{"2330", "TSMC", 638.5, 2.6, 30_000_000},
		{"2317", "Hon Hai", 115.5, -0.8, 45_000_000},
		{"2454", "MediaTek", 825.0, 1.4, 6_000_000},
		{"2412", "Chunghwa Telecom", 118.5, 0.0, 5_000_000},
		{"2881", "Fubon Financial", 68.2, -2.4, 20_000_000},
		{"2882", "Cathay Financial", 45.8, 0.6, 25_000_000},
		{"2308", "Delta Electronics", 362.5, 3.1, 4_000_000},
		{"2603", "Evergreen Marine", 91.2, -3.5, 18_000_000},
		{"1301", "Formosa Plastics", 95.8, -0.4, 3_000_000},
		{"2002", "China Steel", 25.8, 0.4, 40_000_000},
		{"2303", "UMC", 48.2, 1.9, 35_000_000},
		{"2382", "Quanta", 285.0, 4.2, 9_000_000},
	}
	quotes := make([]model.Quote, len(base))
	for i, b := range base {
		quotes[i] = model.Quote{
			Code:          b.code,
			Name:          b.name,
			Close:         b.price,
			ChangePercent: b.change,
			TradeValue:    b.price * b.volume,
		}
	}
	return quotes
}

// SourceOptions configures the HTTP quote sources. With IncludeOTC the
// TWSE sources are merged with the TPEX feed.
type SourceOptions struct {
	OpenAPIURL string
	ReportURL  string
	TPEXURL    string
	IncludeOTC bool
	Proxy      string
	Timeout    time.Duration
	RateLimit  float64
	Log        zerolog.Logger
}

// NewSource builds a QuoteSource by name.
func NewSource(name string, opts SourceOptions) (QuoteSource, error) {
	otc := func(primary QuoteSource) QuoteSource {
		if !opts.IncludeOTC {
			return primary
		}
		return NewMarketSource(primary, opts.Log, NewTPEXFetcher(opts.TPEXURL, opts.Proxy, opts.Timeout, opts.RateLimit))
	}
	switch name {
	case "twse_openapi":
		return otc(NewOpenAPIFetcher(opts.OpenAPIURL, opts.Proxy, opts.Timeout, opts.RateLimit)), nil
	case "twse_report":
		return otc(NewReportFetcher(opts.ReportURL, opts.Proxy, opts.Timeout, opts.RateLimit)), nil
	case "tpex":
		return NewTPEXFetcher(opts.TPEXURL, opts.Proxy, opts.Timeout, opts.RateLimit), nil
	case "mock":
		return &MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown quote source %q", name)
	}
}
