package stockanalyzer

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options controls Core initialization.
type Options struct {
	Logger      *slog.Logger
	HTTPClient  HTTPDoer // Optional: inject custom client for testing
	HTTPTimeout time.Duration
	// ScrapeDelay is the courtesy pause before each holdings-page request.
	// Tunable; lowering it risks getting blocked, nothing more.
	ScrapeDelay time.Duration
	// Generator is the text-generation capability. Nil means rule-based
	// commentary only.
	Generator Generator
	// HoldingsBaseURL overrides the holdings site root (tests).
	HoldingsBaseURL string
	// MarketBaseURL overrides the market data provider root (tests).
	MarketBaseURL string
}

// Core provides the analysis pipeline: resolve, fetch, commentary.
// It is synchronous and side-effect-free on its inputs; AnalyzeAsync is
// the only concession to the presentation layer's threading needs.
type Core struct {
	logger    *slog.Logger
	gen       Generator
	market    *marketFetcher
	portfolio *portfolioFetcher
	inFlight  atomic.Bool
}

// New initializes a Core using the provided options.
func New(opts Options) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultDuration(opts.HTTPTimeout, 15*time.Second)}
	}
	return &Core{
		logger: logger,
		gen:    opts.Generator,
		market: newMarketFetcher(client, logger, opts.MarketBaseURL),
		portfolio: newPortfolioFetcher(portfolioFetcherOptions{
			Client:      client,
			Logger:      logger,
			ScrapeDelay: defaultDuration(opts.ScrapeDelay, 2*time.Second),
			BaseURL:     opts.HoldingsBaseURL,
		}),
	}
}

// Logger returns the core's logger.
func (c *Core) Logger() *slog.Logger {
	return c.logger
}

// Generator returns the configured text-generation capability, or nil.
func (c *Core) Generator() Generator {
	return c.gen
}

func defaultDuration(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
