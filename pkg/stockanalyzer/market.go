package stockanalyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultMarketBaseURL = "https://query1.finance.yahoo.com"
	maxMarketResponse    = 1 << 20

	unknownField = "Unknown"
)

// chartResponse mirrors the provider's chart payload for a trailing daily
// window. Only the fields the pipeline reads are declared.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// quoteSummaryResponse mirrors the provider's quoteSummary payload for the
// price and assetProfile modules.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE struct {
					Raw float64 `json:"raw"`
				} `json:"trailingPE"`
				ForwardPE struct {
					Raw float64 `json:"raw"`
				} `json:"forwardPE"`
			} `json:"summaryDetail"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
				Country  string `json:"country"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteSummary"`
}

type marketFetcher struct {
	client  HTTPDoer
	logger  *slog.Logger
	baseURL string
}

func newMarketFetcher(client HTTPDoer, logger *slog.Logger, baseURL string) *marketFetcher {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultMarketBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &marketFetcher{client: client, logger: logger, baseURL: base}
}

// FetchPrice returns the two most recent sessions for a ticker. When the
// provider has no session data the error wraps ErrNoData so the caller can
// short-circuit before attempting commentary. A single session of history
// sets previous close equal to current close.
func (c *Core) FetchPrice(ctx context.Context, ticker Ticker) (PricePoint, error) {
	return c.market.fetchPrice(ctx, ticker)
}

func (mf *marketFetcher) fetchPrice(ctx context.Context, ticker Ticker) (PricePoint, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=2d", mf.baseURL, url.PathEscape(string(ticker)))
	body, err := mf.get(ctx, endpoint)
	if err != nil {
		return PricePoint{}, WrapError(ErrCodeTransient, fmt.Sprintf("fetch price for %s", ticker), err)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return PricePoint{}, WrapError(ErrCodeTransient, fmt.Sprintf("decode price payload for %s", ticker), err)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return PricePoint{}, WrapError(ErrCodeNotFound, string(ticker), ErrNoData)
	}

	quote := payload.Chart.Result[0].Indicators.Quote[0]
	closes := compactFloats(quote.Close)
	if len(closes) == 0 {
		return PricePoint{}, WrapError(ErrCodeNotFound, string(ticker), ErrNoData)
	}

	point := PricePoint{CurrentClose: closes[len(closes)-1]}
	if len(closes) > 1 {
		point.PreviousClose = closes[len(closes)-2]
	} else {
		// Only one session of history; not an error.
		point.PreviousClose = point.CurrentClose
	}
	if last := lastPresent(quote.High); last != nil {
		point.DayHigh = last
	}
	if last := lastPresent(quote.Low); last != nil {
		point.DayLow = last
	}
	return point, nil
}

// FetchCompanyInfo returns descriptive metadata for a ticker. It never
// hard-fails: any missing field or failed fetch degrades to the
// "Unknown"/zero sentinels.
func (c *Core) FetchCompanyInfo(ctx context.Context, ticker Ticker) CompanyInfo {
	return c.market.fetchCompanyInfo(ctx, ticker)
}

func (mf *marketFetcher) fetchCompanyInfo(ctx context.Context, ticker Ticker) CompanyInfo {
	info := CompanyInfo{
		Name:     string(ticker),
		Sector:   unknownField,
		Industry: unknownField,
		Country:  unknownField,
	}

	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,assetProfile",
		mf.baseURL, url.PathEscape(string(ticker)))
	body, err := mf.get(ctx, endpoint)
	if err != nil {
		mf.logger.Warn("company info fetch failed", "ticker", ticker, "err", err)
		return info
	}

	var payload quoteSummaryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		mf.logger.Warn("company info decode failed", "ticker", ticker, "err", err)
		return info
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return info
	}

	result := payload.QuoteSummary.Result[0]
	if name := strings.TrimSpace(result.Price.ShortName); name != "" {
		info.Name = name
	} else if name := strings.TrimSpace(result.Price.LongName); name != "" {
		info.Name = name
	}
	if s := strings.TrimSpace(result.AssetProfile.Sector); s != "" {
		info.Sector = s
	}
	if s := strings.TrimSpace(result.AssetProfile.Industry); s != "" {
		info.Industry = s
	}
	if s := strings.TrimSpace(result.AssetProfile.Country); s != "" {
		info.Country = s
	}
	info.MarketCap = result.Price.MarketCap.Raw
	if pe := result.SummaryDetail.TrailingPE.Raw; pe > 0 {
		info.PERatio = pe
	} else if pe := result.SummaryDetail.ForwardPE.Raw; pe > 0 {
		info.PERatio = pe
	}
	return info
}

// FetchHistory returns the daily close/volume series backing the chart
// view. Range accepts the provider's window strings ("1mo", "3mo", ...).
func (c *Core) FetchHistory(ctx context.Context, ticker Ticker, window string) ([]HistoryPoint, error) {
	return c.market.fetchHistory(ctx, ticker, window)
}

func (mf *marketFetcher) fetchHistory(ctx context.Context, ticker Ticker, window string) ([]HistoryPoint, error) {
	if window == "" {
		window = "1mo"
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		mf.baseURL, url.PathEscape(string(ticker)), url.QueryEscape(window))
	body, err := mf.get(ctx, endpoint)
	if err != nil {
		return nil, WrapError(ErrCodeTransient, fmt.Sprintf("fetch history for %s", ticker), err)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, WrapError(ErrCodeTransient, fmt.Sprintf("decode history for %s", ticker), err)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, WrapError(ErrCodeNotFound, string(ticker), ErrNoData)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	points := make([]HistoryPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		point := HistoryPoint{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			point.Volume = *quote.Volume[i]
		}
		points = append(points, point)
	}
	if len(points) == 0 {
		return nil, WrapError(ErrCodeNotFound, string(ticker), ErrNoData)
	}
	return points, nil
}

func (mf *marketFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := mf.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxMarketResponse))
}

func compactFloats(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func lastPresent(values []*float64) *float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			v := *values[i]
			return &v
		}
	}
	return nil
}
