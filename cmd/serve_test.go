package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/knowledge-cli/internal/catalog"
	"github.com/sells-group/knowledge-cli/internal/compliance"
	"github.com/sells-group/knowledge-cli/internal/config"
	"github.com/sells-group/knowledge-cli/internal/cost"
	"github.com/sells-group/knowledge-cli/internal/model"
	"github.com/sells-group/knowledge-cli/internal/pipeline"
	"github.com/sells-group/knowledge-cli/internal/scrape"
	"github.com/sells-group/knowledge-cli/internal/selector"
	"github.com/sells-group/knowledge-cli/internal/store"
	"github.com/sells-group/knowledge-cli/pkg/gemini"
)

type fakeRunner struct{}

func (fakeRunner) Run(_ context.Context, _, target string, _ int) ([]model.ScrapedPage, error) {
	return []model.ScrapedPage{
		{URL: target, Title: "Home", Markdown: "# Home\n\nWelcome."},
	}, nil
}

func (fakeRunner) Name() string { return "fake" }

type fakeGemini struct{}

func (fakeGemini) CreateStore(_ context.Context, displayName string) (*gemini.Store, error) {
	return &gemini.Store{Name: "fileSearchStores/api-test", DisplayName: displayName}, nil
}

func (fakeGemini) Upload(_ context.Context, _, _ string, _ map[string]string) (*gemini.Operation, error) {
	return &gemini.Operation{Name: "operations/op-1", Done: true}, nil
}

func (fakeGemini) GetOperation(_ context.Context, name string) (*gemini.Operation, error) {
	return &gemini.Operation{Name: name, Done: true}, nil
}

func (fakeGemini) ListStores(_ context.Context) ([]gemini.Store, error) { return nil, nil }

func (fakeGemini) DeleteStore(_ context.Context, _ string) error { return nil }

func testEnv(t *testing.T) *env {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	version, patterns := compliance.DefaultPatterns()
	denylist, err := compliance.NewDenylist(version, patterns)
	require.NoError(t, err)

	cat := catalog.Default()
	sel := selector.New(cat, denylist, selector.NewScorer(selector.DefaultWeights()))
	fb := scrape.NewFallback(fakeRunner{}, denylist)

	testCfg := &config.Config{
		Apify:  config.ApifyConfig{Token: "test-token"},
		Gemini: config.GeminiConfig{Key: "test-key"},
		Selector: config.SelectorConfig{
			Weights: selector.DefaultWeights(),
			TopN:    3,
		},
		Scrape: config.ScrapeConfig{MaxPages: 10},
		Convert: config.ConvertConfig{
			WorkDir:        t.TempDir(),
			MaxConcurrency: 2,
		},
		Upload: config.UploadConfig{
			RatePerSecond:   100,
			MaxWaitSecs:     5,
			PollIntervalSec: 1,
		},
		Pricing: cost.DefaultRates(),
	}

	geminiClient := fakeGemini{}
	return &env{
		Store:    st,
		Catalog:  cat,
		Denylist: denylist,
		Selector: sel,
		Gemini:   geminiClient,
		Pipeline: pipeline.New(testCfg, st, sel, fb, geminiClient, denylist),
	}
}

func TestRunsEndpointReturnsRunID(t *testing.T) {
	e := testEnv(t)
	r := newRouter(context.Background(), e)

	req := httptest.NewRequest(http.MethodPost, "/runs",
		bytes.NewBufferString(`{"target":"https://docs.example.com","budget":"optimal"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted["run_id"])
	assert.Equal(t, "accepted", accepted["status"])

	// The ID is usable immediately, before the background phases finish.
	getW := httptest.NewRecorder()
	r.ServeHTTP(getW, httptest.NewRequest(http.MethodGet, "/runs/"+accepted["run_id"], nil))
	require.Equal(t, http.StatusOK, getW.Code)

	// The same ID eventually reports a terminal status.
	deadline := time.Now().Add(10 * time.Second)
	for {
		getW = httptest.NewRecorder()
		r.ServeHTTP(getW, httptest.NewRequest(http.MethodGet, "/runs/"+accepted["run_id"], nil))
		require.Equal(t, http.StatusOK, getW.Code)

		var run model.Run
		require.NoError(t, json.Unmarshal(getW.Body.Bytes(), &run))
		if run.Status == model.RunStatusComplete {
			require.NotNil(t, run.Result)
			assert.Equal(t, "apify/rag-web-browser", run.Result.ProviderUsed)
			break
		}
		require.NotEqual(t, model.RunStatusFailed, run.Status)

		if time.Now().After(deadline) {
			t.Fatalf("run %s never completed, status %s", accepted["run_id"], run.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRunsEndpointRequiresTarget(t *testing.T) {
	t.Parallel()
	e := testEnv(t)
	r := newRouter(context.Background(), e)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectEndpoint(t *testing.T) {
	t.Parallel()
	e := testEnv(t)
	r := newRouter(context.Background(), e)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/select",
		bytes.NewBufferString(`{"target":"https://docs.example.com"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var selection model.Selection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &selection))
	assert.Equal(t, model.TargetDocumentation, selection.TargetType)
	require.NotEmpty(t, selection.Candidates)
	assert.Equal(t, "apify/rag-web-browser", selection.Candidates[0].Provider.ID)

	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, httptest.NewRequest(http.MethodPost, "/select",
		bytes.NewBufferString(`{"target":"https://docs.example.com","budget":"luxurious"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
}

func TestServeDrainsInFlightRequests(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: mux}
	ctx, cancel := context.WithCancel(context.Background())

	served := make(chan error, 1)
	go func() { served <- serveAndShutdown(ctx, srv, ln) }()

	respCh := make(chan *http.Response, 1)
	reqErrCh := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			reqErrCh <- err
			return
		}
		respCh <- resp
	}()

	<-started
	cancel()
	// Give shutdown a moment to begin while the request is still in flight.
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case resp := <-respCh:
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	case err := <-reqErrCh:
		t.Fatalf("in-flight request failed during shutdown: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request never completed")
	}

	require.NoError(t, <-served)
}
