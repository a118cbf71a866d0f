package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRun(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/apify~website-content-crawler/runs", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var input RunInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		require.Len(t, input.StartURLs, 1)
		assert.Equal(t, "https://docs.example.com", input.StartURLs[0].URL)
		assert.Equal(t, 50, input.MaxCrawlPages)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(runEnvelope{Data: Run{
			ID:               "run-1",
			ActorID:          "abc",
			Status:           "RUNNING",
			DefaultDatasetID: "ds-1",
		}})
	}))
	defer ts.Close()

	client := NewClient("test-token", WithBaseURL(ts.URL))
	run, err := client.StartRun(context.Background(), "apify/website-content-crawler", RunInput{
		StartURLs:     []StartURL{{URL: "https://docs.example.com"}},
		MaxCrawlPages: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "ds-1", run.DefaultDatasetID)
	assert.False(t, run.Finished())
}

func TestStartRunServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer ts.Close()

	client := NewClient("bad", WithBaseURL(ts.URL))
	_, err := client.StartRun(context.Background(), "apify/crawler", RunInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGetRunRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(runEnvelope{Data: Run{ID: "run-1", Status: RunSucceeded}})
	}))
	defer ts.Close()

	client := NewClient("t", WithBaseURL(ts.URL))
	run, err := client.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunSucceeded, run.Status)
	assert.True(t, run.Finished())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDatasetItems(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/ds-1/items", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "true", r.URL.Query().Get("clean"))

		_ = json.NewEncoder(w).Encode([]DatasetItem{
			{URL: "https://docs.example.com/a", Title: "A", Markdown: "# A"},
			{URL: "https://docs.example.com/b", Title: "B", HTML: "<p>B</p>"},
		})
	}))
	defer ts.Close()

	client := NewClient("t", WithBaseURL(ts.URL))
	items, err := client.DatasetItems(context.Background(), "ds-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "# A", items[0].Markdown)
	assert.Equal(t, "<p>B</p>", items[1].HTML)
}

func TestDatasetItemsAlternateContentFields(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"url": "https://example.com/a", "content": "body text here"},
			{"url": "https://example.com/b", "crawl": {"html": "<p>hi</p>"}}
		]`))
	}))
	defer ts.Close()

	client := NewClient("t", WithBaseURL(ts.URL))
	items, err := client.DatasetItems(context.Background(), "ds-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "body text here", items[0].Content)
	assert.Equal(t, "<p>hi</p>", items[1].Crawl.HTML)
}

func TestRunFinished(t *testing.T) {
	t.Parallel()

	for _, status := range []string{RunSucceeded, RunFailed, RunAborted, RunTimedOut} {
		assert.True(t, (&Run{Status: status}).Finished(), status)
	}
	for _, status := range []string{"READY", "RUNNING", ""} {
		assert.False(t, (&Run{Status: status}).Finished(), status)
	}
}
