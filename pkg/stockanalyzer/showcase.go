package stockanalyzer

import (
	"context"
	"fmt"
	"sync"
)

const showcaseWorkers = 4

// ShowcaseHoldings builds the default-investor holdings table: ticker,
// company name, price, P/E and market cap per row. Rows whose data fetch
// fails still appear with "N/A" fields so the table is always complete.
func (c *Core) ShowcaseHoldings(ctx context.Context) []ShowcaseRow {
	tickers := c.FetchShowcaseHoldings(ctx)
	rows := make([]ShowcaseRow, len(tickers))

	sem := make(chan struct{}, showcaseWorkers)
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker Ticker) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			rows[i] = c.showcaseRow(ctx, ticker)
		}(i, ticker)
	}
	wg.Wait()
	return rows
}

func (c *Core) showcaseRow(ctx context.Context, ticker Ticker) ShowcaseRow {
	row := ShowcaseRow{
		Ticker:    ticker,
		Name:      string(ticker),
		Price:     "N/A",
		PERatio:   "N/A",
		MarketCap: "N/A",
	}

	info := c.FetchCompanyInfo(ctx, ticker)
	if info.Name != "" && info.Name != unknownField {
		row.Name = truncate(info.Name, 20)
	}
	if info.PERatio > 0 {
		row.PERatio = fmt.Sprintf("%.2f", info.PERatio)
	}
	if cap := formatMarketCap(info.MarketCap); cap != "" {
		row.MarketCap = cap
	}

	if price, err := c.FetchPrice(ctx, ticker); err == nil {
		row.Price = fmt.Sprintf("$%.2f", price.CurrentClose)
	}
	return row
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatMarketCap(cap float64) string {
	switch {
	case cap >= 1e12:
		return fmt.Sprintf("$%.2fT", cap/1e12)
	case cap >= 1e9:
		return fmt.Sprintf("$%.2fB", cap/1e9)
	case cap >= 1e6:
		return fmt.Sprintf("$%.2fM", cap/1e6)
	default:
		return ""
	}
}
