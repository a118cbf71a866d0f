package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/knowledge-cli/internal/model"
)

func testPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresCreateRun(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "https://docs.example.com",
			"queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := st.CreateRun(context.Background(), model.Request{Target: "https://docs.example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateRunStatus(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	mock.ExpectExec("UPDATE runs SET status").
		WithArgs("scraping", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.UpdateRunStatus(context.Background(), "run-1", model.RunStatusScraping))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateRunStatusNotFound(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	mock.ExpectExec("UPDATE runs SET status").
		WithArgs("complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.Error(t, st.UpdateRunStatus(context.Background(), "missing", model.RunStatusComplete))
}

func TestPostgresUpdateRunResultSetsStatus(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	mock.ExpectExec("UPDATE runs SET result").
		WithArgs(pgxmock.AnyArg(), "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := st.UpdateRunResult(context.Background(), "run-1", &model.RunResult{Error: "boom"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	req := model.Request{Target: "https://docs.example.com", TopN: 3}
	reqJSON, err := json.Marshal(req)
	require.NoError(t, err)
	resultJSON, err := json.Marshal(&model.RunResult{ProviderUsed: "apify/rag-web-browser"})
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, request, status, result, created_at, updated_at FROM runs").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "request", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", reqJSON, "complete", resultJSON, now, now))

	run, err := st.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, req, run.Request)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, "apify/rag-web-browser", run.Result.ProviderUsed)
}

func TestPostgresListRunsWithFilter(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	reqJSON, err := json.Marshal(model.Request{Target: "https://a.example.com"})
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, request, status, result, created_at, updated_at FROM runs").
		WithArgs("failed", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "request", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", reqJSON, "failed", []byte(nil), now, now))

	runs, err := st.ListRuns(context.Background(), RunFilter{Status: model.RunStatusFailed, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	assert.Nil(t, runs[0].Result)
}

func TestPostgresScrapeCache(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	pages := []model.ScrapedPage{{URL: "https://example.com", Markdown: "# x"}}
	pagesJSON, err := json.Marshal(pages)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO scrape_cache").
		WithArgs(pgxmock.AnyArg(), "https://example.com", pagesJSON, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.SetCachedScrape(context.Background(), "https://example.com", pages, time.Hour))

	mock.ExpectQuery("SELECT pages FROM scrape_cache").
		WithArgs("https://example.com").
		WillReturnRows(pgxmock.NewRows([]string{"pages"}).AddRow(pagesJSON))

	got, err := st.GetCachedScrape(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, pages, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteExpiredScrapes(t *testing.T) {
	t.Parallel()
	st, mock := testPostgres(t)

	mock.ExpectExec("DELETE FROM scrape_cache").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := st.DeleteExpiredScrapes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
