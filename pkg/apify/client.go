// Package apify provides a client for the Apify actor-run API.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the actor execution operations.
type Client interface {
	// StartRun starts an actor run and returns immediately.
	StartRun(ctx context.Context, actorID string, input RunInput) (*Run, error)
	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, runID string) (*Run, error)
	// DatasetItems lists the items of a dataset produced by a run.
	DatasetItems(ctx context.Context, datasetID string) ([]DatasetItem, error)
}

// RunInput is the standard content-crawler input shape.
type RunInput struct {
	StartURLs      []StartURL `json:"startUrls"`
	MaxCrawlPages  int        `json:"maxCrawlPages,omitempty"`
	MaxConcurrency int        `json:"maxConcurrency,omitempty"`
	SaveMarkdown   bool       `json:"saveMarkdown,omitempty"`
	SaveHTML       bool       `json:"saveHtml,omitempty"`
}

// StartURL is a single crawl entry point.
type StartURL struct {
	URL string `json:"url"`
}

// Run is the actor-run resource.
type Run struct {
	ID               string `json:"id"`
	ActorID          string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
	StartedAt        string `json:"startedAt,omitempty"`
	FinishedAt       string `json:"finishedAt,omitempty"`
}

// Terminal run statuses.
const (
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
	RunAborted   = "ABORTED"
	RunTimedOut  = "TIMED-OUT"
)

// Finished reports whether the run reached a terminal status.
func (r *Run) Finished() bool {
	switch r.Status {
	case RunSucceeded, RunFailed, RunAborted, RunTimedOut:
		return true
	}
	return false
}

// DatasetItem is one scraped record. Providers vary in which content fields
// they populate: some emit html/markdown/text, others a generic content
// field or a nested crawl object.
type DatasetItem struct {
	URL      string    `json:"url"`
	Title    string    `json:"title,omitempty"`
	HTML     string    `json:"html,omitempty"`
	Markdown string    `json:"markdown,omitempty"`
	Text     string    `json:"text,omitempty"`
	Content  string    `json:"content,omitempty"`
	Crawl    CrawlInfo `json:"crawl,omitempty"`
}

// CrawlInfo is the crawler sub-object some providers nest their HTML under.
type CrawlInfo struct {
	HTML string `json:"html,omitempty"`
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apify API client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.apify.com/v2",
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503).
func (c *httpClient) retryDo(ctx context.Context, build func() (*http.Request, error)) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := build()
		if err != nil {
			return nil, 0, eris.Wrap(err, "apify: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "apify: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("apify: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// actorPath converts a public actor ID like "apify/website-content-crawler"
// to the API path form "apify~website-content-crawler".
func actorPath(actorID string) string {
	return strings.ReplaceAll(actorID, "/", "~")
}

func (c *httpClient) StartRun(ctx context.Context, actorID string, input RunInput) (*Run, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal run input")
	}

	reqURL := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, actorPath(actorID))

	body, statusCode, err := c.retryDo(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "apify: start run %s", actorID)
	}
	if statusCode != http.StatusCreated && statusCode != http.StatusOK {
		return nil, eris.Errorf("apify: start run %s: unexpected status %d: %s", actorID, statusCode, string(body))
	}

	var env runEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal run")
	}
	return &env.Data, nil
}

func (c *httpClient) GetRun(ctx context.Context, runID string) (*Run, error) {
	reqURL := fmt.Sprintf("%s/actor-runs/%s", c.baseURL, runID)

	body, statusCode, err := c.retryDo(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "apify: get run %s", runID)
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("apify: get run %s: unexpected status %d: %s", runID, statusCode, string(body))
	}

	var env runEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal run")
	}
	return &env.Data, nil
}

func (c *httpClient) DatasetItems(ctx context.Context, datasetID string) ([]DatasetItem, error) {
	reqURL := fmt.Sprintf("%s/datasets/%s/items?format=json&clean=true", c.baseURL, datasetID)

	body, statusCode, err := c.retryDo(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "apify: dataset items %s", datasetID)
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("apify: dataset items %s: unexpected status %d: %s", datasetID, statusCode, string(body))
	}

	var items []DatasetItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal dataset items")
	}
	return items, nil
}
