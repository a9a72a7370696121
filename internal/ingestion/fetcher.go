package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher is the shared HTTP client used by all source adapters. It applies a
// bounded timeout, a polite per-fetcher rate limit, and classifies failures
// into the transient/permanent taxonomy so the retry layer knows what to do.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher with the given request timeout. Each adapter
// gets its own fetcher so one slow upstream cannot starve the others' rate
// budget.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		// One request per second with a small burst keeps us well under any
		// reasonable upstream limit.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Get fetches the URL body. 4xx responses and malformed URLs produce a
// PermanentFetchError; network failures and 5xx responses produce a
// TransientFetchError.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, NewPermanentFetchError(fmt.Errorf("malformed url %q: %w", rawURL, err))
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, NewPermanentFetchError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, NewTransientFetchError(fmt.Errorf("http get %s: %w", rawURL, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, NewTransientFetchError(fmt.Errorf("http get %s: status %d", rawURL, resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, NewPermanentFetchError(fmt.Errorf("http get %s: status %d", rawURL, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransientFetchError(fmt.Errorf("read body from %s: %w", rawURL, err))
	}

	return body, nil
}
