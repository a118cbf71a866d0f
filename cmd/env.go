package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/catalog"
	"github.com/sells-group/knowledge-cli/internal/compliance"
	"github.com/sells-group/knowledge-cli/internal/pipeline"
	"github.com/sells-group/knowledge-cli/internal/scrape"
	"github.com/sells-group/knowledge-cli/internal/selector"
	"github.com/sells-group/knowledge-cli/internal/store"
	"github.com/sells-group/knowledge-cli/pkg/apify"
	"github.com/sells-group/knowledge-cli/pkg/gemini"
)

// env holds the wired dependencies shared by the run and serve commands.
type env struct {
	Store    store.Store
	Catalog  catalog.Source
	Denylist *compliance.Denylist
	Selector *selector.Selector
	Gemini   gemini.Client
	Pipeline *pipeline.Pipeline
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initSelection loads the catalog and denylist artifacts and builds the
// selector. Used by commands that rank providers without running a pipeline.
func initSelection() (catalog.Source, *compliance.Denylist, *selector.Selector, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "load provider catalog")
	}

	denylist, err := compliance.Load(cfg.Compliance.BannedPatternsPath)
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "load banned patterns")
	}

	zap.L().Info("selection artifacts loaded",
		zap.Int("providers", len(cat.All())),
		zap.String("denylist_version", denylist.Version()),
		zap.Int("patterns", denylist.PatternCount()),
	)

	sel := selector.New(cat, denylist, selector.NewScorer(cfg.Selector.Weights))
	return cat, denylist, sel, nil
}

// initEnv wires the full pipeline environment.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cat, denylist, sel, err := initSelection()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	apifyClient := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))
	geminiClient := gemini.NewClient(cfg.Gemini.Key, gemini.WithBaseURL(cfg.Gemini.BaseURL))

	runner := scrape.NewApifyRunner(apifyClient, time.Duration(cfg.Scrape.TimeoutSecs)*time.Second)
	fallback := scrape.NewFallback(runner, denylist)

	p := pipeline.New(cfg, st, sel, fallback, geminiClient, denylist)
	if err := p.Validate(); err != nil {
		_ = st.Close()
		return nil, err
	}

	return &env{
		Store:    st,
		Catalog:  cat,
		Denylist: denylist,
		Selector: sel,
		Gemini:   geminiClient,
		Pipeline: p,
	}, nil
}
