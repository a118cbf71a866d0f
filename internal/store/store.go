// Package store persists pipeline runs, phases, and the scrape cache.
package store

import (
	"context"
	"time"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Target string          `json:"target,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the scraping pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, req model.Request) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Scrape cache
	GetCachedScrape(ctx context.Context, target string) ([]model.ScrapedPage, error)
	SetCachedScrape(ctx context.Context, target string, pages []model.ScrapedPage, ttl time.Duration) error
	DeleteExpiredScrapes(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
