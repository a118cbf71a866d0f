package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/knowledge-cli/internal/model"
)

func testSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteRunLifecycle(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)
	ctx := context.Background()

	req := model.Request{
		Target: "https://docs.example.com",
		Budget: model.BudgetOptimal,
		TopN:   3,
	}

	run, err := st.CreateRun(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusScraping))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusScraping, got.Status)
	assert.Equal(t, req, got.Request)
	assert.Nil(t, got.Result)

	result := &model.RunResult{
		TargetType:       model.TargetDocumentation,
		ProviderUsed:     "apify/rag-web-browser",
		ProvidersTried:   []string{"apify/rag-web-browser"},
		PagesScraped:     42,
		DocumentsCreated: 40,
		DurationMS:       1234,
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "apify/rag-web-browser", got.Result.ProviderUsed)
	assert.Equal(t, 42, got.Result.PagesScraped)
}

func TestSQLiteFailedResultSetsFailedStatus(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Request{Target: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunResult(ctx, run.ID, &model.RunResult{Error: "all candidate providers failed"}))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)

	_, err := st.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLiteUpdateMissingRun(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)

	assert.Error(t, st.UpdateRunStatus(context.Background(), "missing", model.RunStatusComplete))
	assert.Error(t, st.UpdateRunResult(context.Background(), "missing", &model.RunResult{}))
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, model.Request{Target: "https://a.example.com"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.Request{Target: "https://b.example.com"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	byTarget, err := st.ListRuns(ctx, RunFilter{Target: "https://b.example.com"})
	require.NoError(t, err)
	assert.Len(t, byTarget, 1)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLitePhases(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Request{Target: "https://example.com"})
	require.NoError(t, err)

	phase, err := st.CreatePhase(ctx, run.ID, "1_select")
	require.NoError(t, err)
	assert.Equal(t, "running", phase.Status)

	require.NoError(t, st.CompletePhase(ctx, phase.ID, &model.PhaseResult{
		Detail:     "documentation",
		Items:      3,
		DurationMS: 5,
	}))

	failedPhase, err := st.CreatePhase(ctx, run.ID, "2_scrape")
	require.NoError(t, err)
	require.NoError(t, st.CompletePhase(ctx, failedPhase.ID, &model.PhaseResult{
		Error: "provider exploded",
	}))
}

func TestSQLiteScrapeCache(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)
	ctx := context.Background()

	pages := []model.ScrapedPage{
		{URL: "https://docs.example.com/a", Markdown: "# A"},
		{URL: "https://docs.example.com/b", Markdown: "# B"},
	}

	// Miss before set.
	got, err := st.GetCachedScrape(ctx, "https://docs.example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.SetCachedScrape(ctx, "https://docs.example.com", pages, time.Hour))

	got, err = st.GetCachedScrape(ctx, "https://docs.example.com")
	require.NoError(t, err)
	assert.Equal(t, pages, got)

	// Different target still misses.
	got, err = st.GetCachedScrape(ctx, "https://other.example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteScrapeCacheExpiry(t *testing.T) {
	t.Parallel()
	st := testSQLite(t)
	ctx := context.Background()

	pages := []model.ScrapedPage{{URL: "https://example.com", Text: "x"}}
	require.NoError(t, st.SetCachedScrape(ctx, "https://example.com", pages, -time.Minute))

	got, err := st.GetCachedScrape(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entries are invisible")

	n, err := st.DeleteExpiredScrapes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
