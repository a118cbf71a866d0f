package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/compliance"
	"github.com/sells-group/knowledge-cli/internal/model"
)

// ErrAllScrapersFailed is returned when every ranked candidate was tried
// (or rejected) and none produced pages.
var ErrAllScrapersFailed = eris.New("scrape: all candidate providers failed")

// Fallback tries ranked candidates in order, returning the first success.
// Each candidate is re-checked against the denylist immediately before
// execution so a provider that slipped through selection is never run.
type Fallback struct {
	runner   Runner
	denylist *compliance.Denylist
}

// NewFallback creates a Fallback around a runner and denylist.
func NewFallback(runner Runner, denylist *compliance.Denylist) *Fallback {
	return &Fallback{runner: runner, denylist: denylist}
}

// Execute runs the candidates in ranked order until one succeeds.
// Returns the pages, the winning provider ID, and the IDs of every
// provider that was attempted (including rejected ones).
func (f *Fallback) Execute(ctx context.Context, candidates []model.Candidate, target string, maxPages int) (*Result, []string, error) {
	if len(candidates) == 0 {
		return nil, nil, eris.New("scrape: no candidates to execute")
	}

	tried := make([]string, 0, len(candidates))
	var lastErr error

	for _, cand := range candidates {
		tried = append(tried, cand.Provider.ID)

		if banned, pattern := f.denylist.Match(cand.Provider); banned {
			zap.L().Warn("scrape: candidate rejected before execution",
				zap.String("provider", cand.Provider.ID),
				zap.String("pattern", pattern),
				zap.String("denylist_version", f.denylist.Version()),
			)
			lastErr = eris.Errorf("scrape: provider %s matched denylist pattern %q", cand.Provider.ID, pattern)
			continue
		}

		pages, err := f.runner.Run(ctx, cand.Provider.ID, target, maxPages)
		if err != nil {
			zap.L().Warn("scrape: provider failed, trying next",
				zap.String("provider", cand.Provider.ID),
				zap.Float64("score", cand.Score),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		zap.L().Info("scrape: provider succeeded",
			zap.String("provider", cand.Provider.ID),
			zap.Int("pages", len(pages)),
		)
		return &Result{Pages: pages, Provider: cand.Provider.ID}, tried, nil
	}

	if lastErr != nil {
		return nil, tried, eris.Wrapf(ErrAllScrapersFailed, "last error: %v", lastErr)
	}
	return nil, tried, ErrAllScrapersFailed
}
