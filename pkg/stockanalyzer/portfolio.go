package stockanalyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultHoldingsBaseURL = "https://www.dataroma.com"
	holdingsPathFragment   = "/m/stock.php?sym="
	maxPortfolioTickers    = 15
	maxTickerLength        = 6
	maxHoldingsPageSize    = 2 << 20
)

// showcaseFallback is the static large-cap list substituted when the
// default-investor scrape comes back empty, so the showcase view always
// has rows to display.
var showcaseFallback = []Ticker{
	"AAPL", "AXP", "BAC", "KO", "CVX", "OXY", "MCO", "KHC", "CB", "DVA", "V", "AMZN",
}

// browserHeaders mimic a desktop browser; the holdings site rejects
// obvious non-browser clients.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,/;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

type portfolioFetcherOptions struct {
	Client      HTTPDoer
	Logger      *slog.Logger
	ScrapeDelay time.Duration
	BaseURL     string
}

type portfolioFetcher struct {
	client      HTTPDoer
	logger      *slog.Logger
	scrapeDelay time.Duration
	baseURL     string
}

func newPortfolioFetcher(opts portfolioFetcherOptions) *portfolioFetcher {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultHoldingsBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &portfolioFetcher{
		client:      opts.Client,
		logger:      logger,
		scrapeDelay: opts.ScrapeDelay,
		baseURL:     baseURL,
	}
}

// FetchPortfolio returns the public holdings for an investor code, ordered
// by first appearance, deduplicated, capped at 15. Network and parse
// failures yield an empty slice, not an error; the caller's fallback
// policy decides what an empty result means.
func (c *Core) FetchPortfolio(ctx context.Context, code InvestorCode) []Ticker {
	return c.portfolio.fetch(ctx, code)
}

func (pf *portfolioFetcher) fetch(ctx context.Context, code InvestorCode) []Ticker {
	if code == "" {
		return nil
	}

	// Courtesy pause so repeated lookups don't hammer the site.
	if pf.scrapeDelay > 0 {
		select {
		case <-time.After(pf.scrapeDelay):
		case <-ctx.Done():
			return nil
		}
	}

	url := fmt.Sprintf("%s/m/holdings.php?m=%s", pf.baseURL, code)
	pf.logger.Debug("fetching holdings page", "code", code, "url", url)

	body, err := pf.get(ctx, url)
	if err != nil {
		pf.logger.Warn("holdings fetch failed", "code", code, "err", err)
		return nil
	}

	tickers, err := parseHoldingsHTML(body)
	if err != nil {
		pf.logger.Warn("holdings parse failed", "code", code, "err", err)
		return nil
	}
	return tickers
}

func (pf *portfolioFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	resp, err := pf.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxHoldingsPageSize))
}

// parseHoldingsHTML extracts ticker symbols from anchors pointing at the
// stock-detail page. The href shape (`.../m/stock.php?sym=<TICKER>`) is an
// external contract the site owns; breakage here degrades to "no data".
func parseHoldingsHTML(body []byte) ([]Ticker, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var tickers []Ticker
	seen := make(map[Ticker]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if len(tickers) >= maxPortfolioTickers {
			return
		}
		href, _ := sel.Attr("href")
		idx := strings.Index(href, holdingsPathFragment)
		if idx < 0 {
			return
		}
		sym := href[idx+len(holdingsPathFragment):]
		// Extra query parameters follow the symbol.
		if amp := strings.IndexByte(sym, '&'); amp >= 0 {
			sym = sym[:amp]
		}
		ticker := Ticker(strings.ToUpper(strings.TrimSpace(sym)))
		if ticker == "" || len(ticker) > maxTickerLength {
			return
		}
		if _, dup := seen[ticker]; dup {
			return
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	})
	return tickers, nil
}

// FetchShowcaseHoldings returns the default investor's holdings for the
// showcase view, substituting the static large-cap list when the scrape
// yields nothing. Only this path carries the static fallback; investor
// lookups report an empty portfolio as not found.
func (c *Core) FetchShowcaseHoldings(ctx context.Context) []Ticker {
	tickers := c.portfolio.fetch(ctx, DefaultInvestorCode)
	if len(tickers) == 0 {
		c.logger.Info("showcase scrape empty; using static fallback")
		tickers = append([]Ticker(nil), showcaseFallback...)
	}
	return tickers
}
