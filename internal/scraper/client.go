// Package scraper fetches SFU web pages and the course outlines API.
// It provides a shared HTTP client with retries and the page loaders that
// turn the retrieval corpus URLs into plain-text documents.
package scraper

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/metrics"
)

// Client is an HTTP client with retries for upstream fetches.
type Client struct {
	httpClient *http.Client
	maxRetries int
	metrics    *metrics.Metrics
}

// NewClient creates a new fetch client.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries: maxRetries,
	}
}

// SetMetrics enables fetch instrumentation. May be nil.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// record observes one finished fetch, grouped by upstream target.
func (c *Client) record(url string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}

	target := "corpus"
	if strings.Contains(url, "course-outlines") {
		target = "course_api"
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.FetchRequestsTotal.WithLabelValues(target, status).Inc()
	c.metrics.FetchDurationSeconds.WithLabelValues(target).Observe(time.Since(start).Seconds())
}

// Get performs a GET request with retries.
// Caller is responsible for closing the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response
	start := time.Now()

	err := RetryWithBackoff(ctx, c.maxRetries, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return apperrors.NewFetchError(url, 0, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			fetchErr := apperrors.NewFetchError(url, resp.StatusCode, fmt.Errorf("unexpected status"))
			switch resp.StatusCode {
			case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
				return Permanent(fetchErr)
			default:
				return fetchErr
			}
		}

		return nil
	})
	c.record(url, start, err)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// GetBody performs a GET request and returns the decoded response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	reader, closeFn, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.NewFetchError(url, resp.StatusCode, err)
	}
	return body, nil
}

// GetDocument performs a GET request and parses the response as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	reader, closeFn, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperrors.NewFetchError(url, resp.StatusCode, err)
	}
	return doc, nil
}

func decodeBody(resp *http.Response) (io.Reader, func(), error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		return gzipReader, func() { _ = gzipReader.Close() }, nil
	}
	return resp.Body, func() {}, nil
}
