// Package gemini provides a client for the Gemini File Search Store API.
// File Search Stores persist indefinitely until deleted, unlike the basic
// file API which expires uploads after 48 hours.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the File Search Store operations.
type Client interface {
	// CreateStore creates a persistent file-search store.
	CreateStore(ctx context.Context, displayName string) (*Store, error)
	// Upload imports a local file into a store. The returned operation must
	// be polled to completion.
	Upload(ctx context.Context, storeName, path string, metadata map[string]string) (*Operation, error)
	// GetOperation fetches the current state of a long-running operation.
	GetOperation(ctx context.Context, name string) (*Operation, error)
	// ListStores lists all stores owned by the API key.
	ListStores(ctx context.Context) ([]Store, error)
	// DeleteStore permanently deletes a store and its indexed data.
	DeleteStore(ctx context.Context, name string) error
}

// Store is a file-search store resource.
type Store struct {
	Name        string `json:"name"` // "fileSearchStores/<id>"
	DisplayName string `json:"displayName"`
	CreateTime  string `json:"createTime,omitempty"`
}

// Operation is a long-running import operation.
type Operation struct {
	Name  string          `json:"name"`
	Done  bool            `json:"done"`
	Error *OperationError `json:"error,omitempty"`
}

// OperationError carries a failed operation's status.
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type storeList struct {
	FileSearchStores []Store `json:"fileSearchStores"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Gemini File Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) do(ctx context.Context, method, reqURL string, payload []byte, contentType string) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "gemini: create request")
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "gemini: request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "gemini: read response body")
	}
	return respBody, resp.StatusCode, nil
}

func (c *httpClient) CreateStore(ctx context.Context, displayName string) (*Store, error) {
	payload, err := json.Marshal(map[string]string{"displayName": displayName})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: marshal store request")
	}

	body, status, err := c.do(ctx, http.MethodPost, c.baseURL+"/fileSearchStores", payload, "application/json")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("gemini: create store: unexpected status %d: %s", status, string(body))
	}

	var store Store
	if err := json.Unmarshal(body, &store); err != nil {
		return nil, eris.Wrap(err, "gemini: unmarshal store")
	}
	return &store, nil
}

func (c *httpClient) Upload(ctx context.Context, storeName, path string, metadata map[string]string) (*Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gemini: read %s", path)
	}

	q := url.Values{}
	for k, v := range metadata {
		q.Add("customMetadata."+k, v)
	}
	reqURL := fmt.Sprintf("%s/%s:uploadToFileSearchStore", c.baseURL, storeName)
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	body, status, err := c.do(ctx, http.MethodPost, reqURL, data, "text/plain")
	if err != nil {
		return nil, eris.Wrapf(err, "gemini: upload %s", path)
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("gemini: upload %s: unexpected status %d: %s", path, status, string(body))
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, eris.Wrap(err, "gemini: unmarshal operation")
	}
	return &op, nil
}

func (c *httpClient) GetOperation(ctx context.Context, name string) (*Operation, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+name, nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("gemini: get operation %s: unexpected status %d: %s", name, status, string(body))
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, eris.Wrap(err, "gemini: unmarshal operation")
	}
	return &op, nil
}

func (c *httpClient) ListStores(ctx context.Context) ([]Store, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.baseURL+"/fileSearchStores", nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("gemini: list stores: unexpected status %d: %s", status, string(body))
	}

	var list storeList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, eris.Wrap(err, "gemini: unmarshal store list")
	}
	return list.FileSearchStores, nil
}

func (c *httpClient) DeleteStore(ctx context.Context, name string) error {
	body, status, err := c.do(ctx, http.MethodDelete, c.baseURL+"/"+name+"?force=true", nil, "")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return eris.Errorf("gemini: delete store %s: unexpected status %d: %s", name, status, string(body))
	}
	return nil
}
