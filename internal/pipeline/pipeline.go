// Package pipeline orchestrates a knowledge run: select a provider, scrape
// the target, convert pages to documents, upload them to a retrieval store,
// and price the whole thing.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/compliance"
	"github.com/sells-group/knowledge-cli/internal/config"
	"github.com/sells-group/knowledge-cli/internal/convert"
	"github.com/sells-group/knowledge-cli/internal/cost"
	"github.com/sells-group/knowledge-cli/internal/model"
	"github.com/sells-group/knowledge-cli/internal/scrape"
	"github.com/sells-group/knowledge-cli/internal/selector"
	"github.com/sells-group/knowledge-cli/internal/store"
	"github.com/sells-group/knowledge-cli/pkg/gemini"
)

// Pipeline wires the run phases together.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	selector *selector.Selector
	fallback *scrape.Fallback
	gemini   gemini.Client
	costCalc *cost.Calculator
	denylist *compliance.Denylist
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	sel *selector.Selector,
	fb *scrape.Fallback,
	geminiClient gemini.Client,
	denylist *compliance.Denylist,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		selector: sel,
		fallback: fb,
		gemini:   geminiClient,
		costCalc: cost.NewCalculator(cfg.Pricing),
		denylist: denylist,
	}
}

// Validate checks that the pipeline can run at all: credentials present and
// the denylist loaded. Called once before the first run.
func (p *Pipeline) Validate() error {
	if p.cfg.Apify.Token == "" {
		return eris.New("pipeline: apify token is not configured")
	}
	if p.cfg.Gemini.Key == "" {
		return eris.New("pipeline: gemini api key is not configured")
	}
	if p.denylist.PatternCount() == 0 {
		return eris.New("pipeline: denylist has no patterns")
	}
	return nil
}

// CreateRun records a new queued run for the request. Callers that need the
// run ID before execution starts (the async API) create the record first and
// pass it to ExecuteRun.
func (p *Pipeline) CreateRun(ctx context.Context, req model.Request) (*model.Run, error) {
	run, err := p.store.CreateRun(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return run, nil
}

// Run creates a run record and executes it to completion.
func (p *Pipeline) Run(ctx context.Context, req model.Request) (*model.RunResult, error) {
	run, err := p.CreateRun(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.ExecuteRun(ctx, run.ID, req)
}

// ExecuteRun runs the pipeline phases against an existing run record and
// persists progress on it. The returned RunResult is also saved on the
// record; an error return means the run failed and the result carries the
// error message.
func (p *Pipeline) ExecuteRun(ctx context.Context, runID string, req model.Request) (*model.RunResult, error) {
	log := zap.L().With(
		zap.String("target", req.Target),
		zap.String("run_id", runID),
	)
	log.Info("pipeline: starting run",
		zap.String("budget", string(req.Budget)),
		zap.String("denylist_version", p.denylist.Version()),
	)

	start := time.Now()

	result, runErr := p.execute(ctx, runID, req, log)
	if result == nil {
		result = &model.RunResult{}
	}
	result.DurationMS = time.Since(start).Milliseconds()
	if runErr != nil {
		result.Error = runErr.Error()
	}

	if saveErr := p.store.UpdateRunResult(ctx, runID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	if runErr != nil {
		return result, runErr
	}

	log.Info("pipeline: run complete",
		zap.String("provider", result.ProviderUsed),
		zap.Int("pages", result.PagesScraped),
		zap.Int("documents", result.DocumentsCreated),
		zap.Int64("duration_ms", result.DurationMS),
	)

	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, runID string, req model.Request, log *zap.Logger) (*model.RunResult, error) {
	result := &model.RunResult{}

	setStatus := func(status model.RunStatus) {
		if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
			log.Warn("pipeline: failed to update status", zap.Error(err))
		}
	}

	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) error {
		phase, phaseErr := p.store.CreatePhase(ctx, runID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		phaseStart := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(phaseStart).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.DurationMS = duration
		if fnErr != nil {
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		return fnErr
	}

	// ===== Phase 1: Selection =====
	setStatus(model.RunStatusSelecting)

	var selection *model.Selection
	if err := trackPhase("1_select", func() (*model.PhaseResult, error) {
		topN := req.TopN
		if topN <= 0 {
			topN = p.cfg.Selector.TopN
		}
		budget := req.Budget
		if budget == "" {
			budget = model.BudgetOptimal
		}
		sel, selErr := p.selector.Select(req.Target, budget, topN)
		if selErr != nil {
			return nil, selErr
		}
		selection = sel
		return &model.PhaseResult{
			Detail: string(sel.TargetType),
			Items:  len(sel.Candidates),
		}, nil
	}); err != nil {
		return result, err
	}
	result.TargetType = selection.TargetType

	// ===== Phase 2: Scrape with fallback =====
	setStatus(model.RunStatusScraping)

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = p.cfg.Scrape.MaxPages
	}

	var pages []model.ScrapedPage
	if err := trackPhase("2_scrape", func() (*model.PhaseResult, error) {
		if cached, cacheErr := p.store.GetCachedScrape(ctx, req.Target); cacheErr != nil {
			log.Warn("pipeline: cache lookup failed", zap.Error(cacheErr))
		} else if len(cached) > 0 {
			log.Info("pipeline: using cached scrape",
				zap.String("target", req.Target),
				zap.Int("pages", len(cached)),
			)
			pages = cached
			result.ProviderUsed = "cache"
			return &model.PhaseResult{Detail: "cache", Items: len(cached)}, nil
		}

		scrapeResult, tried, scrapeErr := p.fallback.Execute(ctx, selection.Candidates, req.Target, maxPages)
		result.ProvidersTried = tried
		if scrapeErr != nil {
			return nil, scrapeErr
		}
		pages = scrapeResult.Pages
		result.ProviderUsed = scrapeResult.Provider

		ttl := time.Duration(p.cfg.Scrape.CacheTTLHours) * time.Hour
		if ttl > 0 {
			if cacheErr := p.store.SetCachedScrape(ctx, req.Target, pages, ttl); cacheErr != nil {
				log.Warn("pipeline: failed to cache scrape", zap.Error(cacheErr))
			}
		}

		return &model.PhaseResult{Detail: scrapeResult.Provider, Items: len(pages)}, nil
	}); err != nil {
		return result, err
	}
	result.PagesScraped = len(pages)

	// ===== Phase 3: Convert =====
	setStatus(model.RunStatusConverting)

	var docs []model.Document
	if err := trackPhase("3_convert", func() (*model.PhaseResult, error) {
		outputDir := filepath.Join(p.cfg.Convert.WorkDir, runID)
		converted, convErr := convert.ConvertPages(pages, outputDir)
		if convErr != nil {
			return nil, convErr
		}
		if len(converted) == 0 {
			return nil, eris.New("pipeline: no documents produced from scraped pages")
		}
		docs = converted
		return &model.PhaseResult{Detail: outputDir, Items: len(converted)}, nil
	}); err != nil {
		return result, err
	}
	result.DocumentsCreated = len(docs)

	// ===== Phase 4: Upload =====
	setStatus(model.RunStatusUploading)

	var corpus *model.Corpus
	if err := trackPhase("4_upload", func() (*model.PhaseResult, error) {
		corpusName := req.CorpusName
		if corpusName == "" {
			corpusName = defaultCorpusName(req.Target)
		}
		uploaded, upErr := p.uploadDocuments(ctx, corpusName, docs)
		if upErr != nil {
			return nil, upErr
		}
		corpus = uploaded
		return &model.PhaseResult{
			Detail:  uploaded.StoreName,
			Items:   uploaded.FilesIndexed,
			CostUSD: uploaded.CostEstimateUSD,
		}, nil
	}); err != nil {
		return result, err
	}
	result.Corpus = corpus

	// ===== Phase 5: Pricing =====
	if err := trackPhase("5_price", func() (*model.PhaseResult, error) {
		pricing := p.costCalc.PerPage(len(pages))
		result.Pricing = pricing

		guidePath := filepath.Join(p.cfg.Convert.WorkDir, runID, "query_guide.md")
		if guideErr := WriteQueryGuide(guidePath, corpus, result); guideErr != nil {
			log.Warn("pipeline: failed to write query guide", zap.Error(guideErr))
		}

		return &model.PhaseResult{
			Detail:  fmt.Sprintf("$%.2f", pricing.EstimatedTotal),
			CostUSD: pricing.EstimatedTotal,
		}, nil
	}); err != nil {
		return result, err
	}

	return result, nil
}
