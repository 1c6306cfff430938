package stockanalyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// routeClient implements HTTPDoer, answering requests by URL substring.
// Safe for concurrent use so worker-pool call sites can share one.
type routeClient struct {
	routes map[string]routeResponse
	mu     sync.Mutex
	calls  []string
}

type routeResponse struct {
	status int
	body   string
	err    error
}

func (rc *routeClient) Do(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	rc.mu.Lock()
	rc.calls = append(rc.calls, url)
	rc.mu.Unlock()
	for fragment, resp := range rc.routes {
		if strings.Contains(url, fragment) {
			if resp.err != nil {
				return nil, resp.err
			}
			status := resp.status
			if status == 0 {
				status = http.StatusOK
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(resp.body)),
				Header:     make(http.Header),
			}, nil
		}
	}
	return nil, errors.New("no route for " + url)
}

// fakeGenerator implements Generator for commentary tests.
type fakeGenerator struct {
	available bool
	text      string
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeGenerator) Available() bool {
	return f.available
}

func newTestCore(t *testing.T, client HTTPDoer, gen Generator) *Core {
	t.Helper()
	return New(Options{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		HTTPClient:  client,
		ScrapeDelay: 1, // effectively no delay in tests
		Generator:   gen,
	})
}

func floatPtr(v float64) *float64 {
	return &v
}

func pricePoint(current, previous, high, low float64) PricePoint {
	return PricePoint{
		CurrentClose:  current,
		PreviousClose: previous,
		DayHigh:       floatPtr(high),
		DayLow:        floatPtr(low),
	}
}
