package stockanalyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// The portfolio listing prices at most the first ten holdings; the rest
// are listed without quotes to keep the lookup fast.
const maxPricedHoldings = 10

var notFoundHints = []string{
	"Check your internet connection",
	"Verify the stock symbol is correct",
	"Try a different symbol",
	"Wait a moment and try again",
}

// Analyze turns a user-entered string into exactly one outcome: a stock
// report, a portfolio report, or a failure. Only one analysis runs at a
// time; a request started while another is in flight is rejected
// immediately rather than queued or cancelled.
func (c *Core) Analyze(ctx context.Context, query string) Outcome {
	if !c.inFlight.CompareAndSwap(false, true) {
		return failureOutcome(ErrCodeBusy, "an analysis is already running", nil)
	}
	defer c.inFlight.Store(false)

	query = strings.TrimSpace(query)
	if query == "" {
		return failureOutcome(ErrCodeInvalidInput, "enter a stock symbol or investor name", nil)
	}

	if code, ok := ResolveInvestor(query); ok {
		return c.analyzeInvestor(ctx, query, code)
	}
	return c.analyzeTicker(ctx, Ticker(strings.ToUpper(query)))
}

// AnalyzeAsync runs Analyze on its own goroutine and delivers the outcome
// through the callback. The presentation layer owns scheduling the
// callback onto its own thread.
func (c *Core) AnalyzeAsync(ctx context.Context, query string, deliver func(Outcome)) {
	go func() {
		deliver(c.Analyze(ctx, query))
	}()
}

func (c *Core) analyzeInvestor(ctx context.Context, name string, code InvestorCode) Outcome {
	c.logger.Info("analyzing investor portfolio", "investor", name, "code", code)

	tickers := c.FetchPortfolio(ctx, code)
	if len(tickers) == 0 {
		// No static fallback on this path; an empty scrape is reported.
		return failureOutcome(ErrCodeNotFound, fmt.Sprintf("portfolio not found for %s", name), notFoundHints)
	}

	holdings := make([]PortfolioHolding, 0, len(tickers))
	for i, ticker := range tickers {
		holding := PortfolioHolding{Ticker: ticker}
		if i < maxPricedHoldings {
			if price, err := c.FetchPrice(ctx, ticker); err == nil {
				current := price.CurrentClose
				holding.Price = &current
				if pct, ok := price.ChangePct(); ok {
					holding.ChangePct = &pct
				}
			}
		}
		holdings = append(holdings, holding)
	}

	return Outcome{
		Kind: OutcomePortfolio,
		Portfolio: &PortfolioReport{
			Investor:    name,
			Code:        code,
			Holdings:    holdings,
			CompletedAt: time.Now().Format(time.RFC3339),
		},
	}
}

func (c *Core) analyzeTicker(ctx context.Context, ticker Ticker) Outcome {
	c.logger.Info("analyzing symbol", "ticker", ticker)

	price, err := c.FetchPrice(ctx, ticker)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return failureOutcome(ErrCodeNotFound, fmt.Sprintf("could not get data for %s", ticker), notFoundHints)
		}
		return failureOutcome(ErrCodeTransient, fmt.Sprintf("could not get data for %s", ticker), notFoundHints)
	}

	info := c.FetchCompanyInfo(ctx, ticker)
	commentary := c.GenerateCommentary(ctx, ticker, price, info)

	return Outcome{
		Kind: OutcomeStock,
		Stock: &StockReport{
			Ticker:      ticker,
			Price:       price,
			Company:     info,
			Commentary:  commentary,
			CompletedAt: time.Now().Format(time.RFC3339),
		},
	}
}

func failureOutcome(code ErrorCode, reason string, hints []string) Outcome {
	return Outcome{
		Kind:    OutcomeFailure,
		Failure: &Failure{Code: code, Reason: reason, Hints: hints},
	}
}
