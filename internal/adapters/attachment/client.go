// Package attachment downloads uploaded files from the platform CDN.
package attachment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"soundboard-bot/internal/core/ports"
	"soundboard-bot/internal/metrics"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	httpClient *http.Client
	maxBytes   int64
}

var _ ports.AttachmentFetcher = (*Client)(nil)

func NewClient(maxBytes int64) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: NewMetricsRoundTripper(http.DefaultTransport),
		},
		maxBytes: maxBytes,
	}
}

// NewTestClient uses the given http.Client, e.g. one from httptest.
func NewTestClient(httpClient *http.Client, maxBytes int64) *Client {
	return &Client{httpClient: httpClient, maxBytes: maxBytes}
}

// Fetch returns the attachment body. Bodies larger than the configured
// limit are rejected before and while reading.
func (c *Client) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if c.maxBytes > 0 {
		if resp.ContentLength > c.maxBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("attachment is %d bytes, limit is %d", resp.ContentLength, c.maxBytes)
		}
		return &limitedBody{r: io.LimitReader(resp.Body, c.maxBytes+1), c: resp.Body, remaining: c.maxBytes}, nil
	}
	return resp.Body, nil
}

// limitedBody fails the read that crosses the byte limit instead of
// silently truncating.
type limitedBody struct {
	r         io.Reader
	c         io.Closer
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	if b.remaining < 0 {
		return n, fmt.Errorf("attachment exceeds size limit")
	}
	return n, err
}

func (b *limitedBody) Close() error {
	return b.c.Close()
}

// -- Middleware --

type MetricsRoundTripper struct {
	Proxied http.RoundTripper
}

func NewMetricsRoundTripper(proxied http.RoundTripper) *MetricsRoundTripper {
	if proxied == nil {
		proxied = http.DefaultTransport
	}
	return &MetricsRoundTripper{Proxied: proxied}
}

func (mrt *MetricsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := mrt.Proxied.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.AttachmentDownloadDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	return resp, err
}
