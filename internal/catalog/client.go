// Package catalog talks to the upstream metadata catalog: a retrying HTTP
// client, a TTL response cache, an identifier cache, and a typed adapter
// that composes them into null-safe accessors.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// retryableStatus marks the transient HTTP statuses worth retrying.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client issues read-only requests to the catalog API with bounded retry.
//
// The contract for every caller is "either data or an explicit absence",
// never an error: a 404, a 403, an exhausted retry budget, a network
// failure, or a malformed body all surface as ok == false with the cause
// logged here.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	maxRetries  int
	backoffBase time.Duration
}

// NewClient builds a catalog client. timeout bounds each individual request.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     trimTrailingSlash(baseURL),
		token:       token,
		httpClient:  &http.Client{Timeout: timeout},
		maxRetries:  3,
		backoffBase: time.Second,
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Get issues a GET to endpoint (a path like "/integration/v1/datasource/")
// with the given query parameters and returns the decoded JSON body.
// Transient statuses (429, 500, 502, 503, 504) are retried up to three
// times with exponential backoff before being reported as absent.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (any, bool) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			slog.Error("catalog request build failed", "endpoint", endpoint, "err", err)
			return nil, false
		}
		req.Header.Set("TOKEN", c.token)
		req.Header.Set("Accept", "application/json")

		slog.Info("catalog request", "endpoint", endpoint)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			slog.Error("catalog request failed", "endpoint", endpoint, "err", err)
			return nil, false
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				slog.Error("catalog response read failed", "endpoint", endpoint, "err", readErr)
				return nil, false
			}
			var data any
			if err := json.Unmarshal(body, &data); err != nil {
				slog.Error("catalog response decode failed", "endpoint", endpoint, "err", err)
				return nil, false
			}
			return data, true

		case resp.StatusCode == http.StatusNotFound:
			slog.Warn("catalog resource not found", "endpoint", endpoint)
			return nil, false

		case resp.StatusCode == http.StatusForbidden:
			slog.Error("catalog access denied, check token permissions", "endpoint", endpoint)
			return nil, false

		case retryableStatus[resp.StatusCode]:
			if attempt >= c.maxRetries {
				slog.Error("catalog retry budget exhausted", "endpoint", endpoint, "status", resp.StatusCode)
				return nil, false
			}
			delay := c.backoffBase << attempt
			slog.Warn("catalog transient error, retrying", "endpoint", endpoint, "status", resp.StatusCode, "attempt", attempt+1)
			if !sleepCtx(ctx, delay) {
				return nil, false
			}

		default:
			slog.Error("catalog request rejected", "endpoint", endpoint, "status", resp.StatusCode)
			return nil, false
		}
	}
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
