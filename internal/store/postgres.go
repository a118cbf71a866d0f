package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// Pool abstracts the pgx connection pool so the store can be tested with
// pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	request    JSONB NOT NULL,
	target     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_phases (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	name       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scrape_cache (
	id         TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	pages      JSONB NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
CREATE INDEX IF NOT EXISTS idx_run_phases_run_id ON run_phases(run_id);
CREATE INDEX IF NOT EXISTS idx_scrape_cache_target ON scrape_cache(target);
CREATE INDEX IF NOT EXISTS idx_scrape_cache_expires_at ON scrape_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, req model.Request) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal request")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, request, target, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, reqJSON, req.Target, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Request:   req,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: update run status")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	status := model.RunStatusComplete
	if result.Error != "" {
		status = model.RunStatusFailed
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: update run result")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, request, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, request, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	arg := 0

	if filter.Status != "" {
		arg++
		query += ` AND status = $` + strconv.Itoa(arg)
		args = append(args, string(filter.Status))
	}
	if filter.Target != "" {
		arg++
		query += ` AND target = $` + strconv.Itoa(arg)
		args = append(args, filter.Target)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		arg++
		query += ` LIMIT $` + strconv.Itoa(arg)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		arg++
		query += ` OFFSET $` + strconv.Itoa(arg)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var (
		run        model.Run
		reqJSON    []byte
		status     string
		resultJSON []byte
	)
	if err := row.Scan(&run.ID, &reqJSON, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrap(err, "postgres: run not found")
		}
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	if err := json.Unmarshal(reqJSON, &run.Request); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	run.Status = model.RunStatus(status)

	if len(resultJSON) > 0 {
		var result model.RunResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		run.Result = &result
	}

	return &run, nil
}

func (s *PostgresStore) CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES ($1, $2, $3, 'running', $4)`,
		id, runID, name, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert phase")
	}

	return &model.RunPhase{
		ID:        id,
		RunID:     runID,
		Name:      name,
		Status:    "running",
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal phase result")
	}

	status := "complete"
	if result != nil && result.Error != "" {
		status = "failed"
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE run_phases SET status = $1, result = $2 WHERE id = $3`,
		status, resultJSON, phaseID,
	)
	return eris.Wrap(err, "postgres: complete phase")
}

func (s *PostgresStore) GetCachedScrape(ctx context.Context, target string) ([]model.ScrapedPage, error) {
	var pagesJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT pages FROM scrape_cache WHERE target = $1 AND expires_at > now() ORDER BY scraped_at DESC LIMIT 1`,
		target,
	).Scan(&pagesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached scrape")
	}

	var pages []model.ScrapedPage
	if err := json.Unmarshal(pagesJSON, &pages); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached pages")
	}
	return pages, nil
}

func (s *PostgresStore) SetCachedScrape(ctx context.Context, target string, pages []model.ScrapedPage, ttl time.Duration) error {
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal pages")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO scrape_cache (id, target, pages, scraped_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), target, pagesJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached scrape")
}

func (s *PostgresStore) DeleteExpiredScrapes(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM scrape_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired scrapes")
	}
	return int(tag.RowsAffected()), nil
}
