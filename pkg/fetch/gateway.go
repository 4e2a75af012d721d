package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kestrelcache/metacache/pkg/log"
	"golang.org/x/sync/semaphore"
)

// maxRetries bounds how many times a transport failure is retried before
// Gateway gives up and returns an *OfflineError to the caller.
const maxRetries = 2

// retryBackoff is the delay between retry attempts. It is small and
// fixed rather than exponential: the gateway is not a general-purpose
// HTTP client, it exists to smooth over transient blips during a single
// cache fetch, and the caller (planner) already bounds overall latency.
const retryBackoff = 250 * time.Millisecond

// Gateway is the cache's bounded HTTP client. Every outbound request —
// mod registry lookups, meta manifests, version-file hash checks — goes
// through a Gateway so the process never has more than MaxConcurrent
// requests in flight regardless of how many keys a single Get call asks
// for.
type Gateway struct {
	client *http.Client
	sem    *semaphore.Weighted
}

// New creates a Gateway that allows at most maxConcurrent requests in
// flight at once, each bounded by timeout.
func New(maxConcurrent int64, timeout time.Duration) *Gateway {
	return &Gateway{
		client: &http.Client{Timeout: timeout},
		sem:    semaphore.NewWeighted(maxConcurrent),
	}
}

// GetJSON issues a GET request and decodes the JSON response body into
// out. Transport failures are retried up to maxRetries times before
// being returned as *OfflineError; non-2xx responses and decode failures
// are never retried.
func (g *Gateway) GetJSON(ctx context.Context, url string, out any) error {
	return g.do(ctx, http.MethodGet, url, nil, out)
}

// PostJSON issues a POST request with a JSON-encoded body and decodes
// the JSON response into out, following the same retry and
// classification rules as GetJSON.
func (g *Gateway) PostJSON(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("fetch: encode request body for %s: %w", url, err)
	}
	return g.do(ctx, http.MethodPost, url, payload, out)
}

// do issues the request, retrying up to maxRetries times on a transport
// failure. body is the raw payload bytes (nil for GET) rather than an
// io.Reader so each retry attempt gets its own fresh reader instead of
// resuming from wherever the previous, failed attempt left off.
func (g *Gateway) do(ctx context.Context, method, url string, body []byte, out any) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("fetch: acquire slot for %s: %w", url, err)
	}
	defer g.sem.Release(1)

	logger := log.WithComponent("fetch")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug().Str("url", url).Int("attempt", attempt).Msg("retrying after transport failure")
			select {
			case <-ctx.Done():
				return classifyTransportError(url, ctx.Err())
			case <-time.After(retryBackoff):
			}
		}

		var bodyReader *bytes.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := newRequest(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("fetch: build request for %s: %w", url, err)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			lastErr = classifyTransportError(url, err)
			continue
		}

		err = decodeResponse(resp, url, out)
		resp.Body.Close()
		return err
	}
	return lastErr
}

func newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func decodeResponse(resp *http.Response, url string, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}
