package stockanalyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func holdingsPage(links ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body><table>")
	for _, link := range links {
		sb.WriteString(fmt.Sprintf(`<tr><td><a href=%q>link</a></td></tr>`, link))
	}
	sb.WriteString("</table></body></html>")
	return sb.String()
}

func TestParseHoldingsHTML(t *testing.T) {
	body := holdingsPage(
		"/m/stock.php?sym=AAPL",
		"/m/stock.php?sym=msft",
		"/m/stock.php?sym=AAPL",           // duplicate
		"/m/stock.php?sym=GOOGL&view=full", // extraneous query parameter
		"/m/stock.php?sym=TOOLONGSYM",     // over length limit
		"/m/stock.php?sym=",               // empty symbol
		"/m/other.php?sym=SKIP",           // wrong path
		"/m/stock.php?sym=BRK.B",
	)

	tickers, err := parseHoldingsHTML([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Ticker{"AAPL", "MSFT", "GOOGL", "BRK.B"}
	if len(tickers) != len(want) {
		t.Fatalf("got %v, want %v", tickers, want)
	}
	for i, ticker := range want {
		if tickers[i] != ticker {
			t.Fatalf("position %d: got %s, want %s", i, tickers[i], ticker)
		}
	}
}

func TestParseHoldingsHTMLCapAndDedup(t *testing.T) {
	var links []string
	for i := 0; i < 30; i++ {
		// Repeat every symbol twice; 30 links collapse to 15 unique.
		links = append(links, fmt.Sprintf("/m/stock.php?sym=S%02d", i/2))
	}
	tickers, err := parseHoldingsHTML([]byte(holdingsPage(links...)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickers) > maxPortfolioTickers {
		t.Fatalf("expected at most %d tickers, got %d", maxPortfolioTickers, len(tickers))
	}
	seen := make(map[Ticker]bool)
	for _, ticker := range tickers {
		if seen[ticker] {
			t.Fatalf("duplicate ticker %s", ticker)
		}
		seen[ticker] = true
	}
}

func TestFetchPortfolioNetworkFailureReturnsEmpty(t *testing.T) {
	core := newTestCore(t, &routeClient{routes: map[string]routeResponse{
		"holdings.php": {err: errors.New("connection refused")},
	}}, nil)

	if tickers := core.FetchPortfolio(context.Background(), "BRK"); len(tickers) != 0 {
		t.Fatalf("expected empty result on network failure, got %v", tickers)
	}
}

func TestFetchPortfolioHTTPErrorReturnsEmpty(t *testing.T) {
	core := newTestCore(t, &routeClient{routes: map[string]routeResponse{
		"holdings.php": {status: 403, body: "blocked"},
	}}, nil)

	if tickers := core.FetchPortfolio(context.Background(), "BRK"); len(tickers) != 0 {
		t.Fatalf("expected empty result on http error, got %v", tickers)
	}
}

func TestFetchPortfolioEmptyCode(t *testing.T) {
	core := newTestCore(t, &routeClient{}, nil)
	if tickers := core.FetchPortfolio(context.Background(), ""); tickers != nil {
		t.Fatalf("expected nil for empty code, got %v", tickers)
	}
}

func TestFetchShowcaseHoldingsFallback(t *testing.T) {
	core := newTestCore(t, &routeClient{routes: map[string]routeResponse{
		"holdings.php": {status: 500, body: ""},
	}}, nil)

	tickers := core.FetchShowcaseHoldings(context.Background())
	if len(tickers) != len(showcaseFallback) {
		t.Fatalf("expected the %d-ticker static fallback, got %v", len(showcaseFallback), tickers)
	}
	for i, ticker := range showcaseFallback {
		if tickers[i] != ticker {
			t.Fatalf("fallback position %d: got %s, want %s", i, tickers[i], ticker)
		}
	}
}

func TestFetchShowcaseHoldingsUsesScrapeWhenAvailable(t *testing.T) {
	core := newTestCore(t, &routeClient{routes: map[string]routeResponse{
		"holdings.php": {body: holdingsPage("/m/stock.php?sym=AAPL", "/m/stock.php?sym=KO")},
	}}, nil)

	tickers := core.FetchShowcaseHoldings(context.Background())
	if len(tickers) != 2 || tickers[0] != "AAPL" || tickers[1] != "KO" {
		t.Fatalf("expected scraped tickers, got %v", tickers)
	}
}

func TestFetchPortfolioSendsBrowserHeaders(t *testing.T) {
	client := &headerCaptureClient{}
	core := newTestCore(t, client, nil)
	core.FetchPortfolio(context.Background(), "BRK")

	if client.userAgent == "" || !strings.Contains(client.userAgent, "Mozilla") {
		t.Fatalf("expected browser-like User-Agent, got %q", client.userAgent)
	}
}

type headerCaptureClient struct {
	routeClient
	userAgent string
}

func (hc *headerCaptureClient) Do(req *http.Request) (*http.Response, error) {
	hc.userAgent = req.Header.Get("User-Agent")
	return nil, errors.New("capture only")
}
