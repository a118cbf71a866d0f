package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/knowledge-cli/internal/model"
	"github.com/sells-group/knowledge-cli/pkg/gemini"
)

// uploadDocuments creates a retrieval store and uploads every document into
// it, polling each import operation to completion. Uploads are rate-limited
// to stay under the API's per-minute quota.
func (p *Pipeline) uploadDocuments(ctx context.Context, corpusName string, docs []model.Document) (*model.Corpus, error) {
	fsStore, err := p.gemini.CreateStore(ctx, corpusName)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: create retrieval store %q", corpusName)
	}

	zap.L().Info("pipeline: retrieval store created",
		zap.String("store", fsStore.Name),
		zap.String("corpus", corpusName),
		zap.Int("documents", len(docs)),
	)

	limiter := rate.NewLimiter(rate.Limit(p.cfg.Upload.RatePerSecond), 1)
	pollInterval := time.Duration(p.cfg.Upload.PollIntervalSec) * time.Second
	maxWait := time.Duration(p.cfg.Upload.MaxWaitSecs) * time.Second

	var (
		mu        sync.Mutex
		indexed   int
		totalSize int64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Convert.MaxConcurrency)

	for _, doc := range docs {
		g.Go(func() error {
			if waitErr := limiter.Wait(gCtx); waitErr != nil {
				return eris.Wrap(waitErr, "pipeline: rate limiter")
			}

			op, upErr := p.gemini.Upload(gCtx, fsStore.Name, doc.Path, map[string]string{
				"source_url": doc.SourceURL,
				"title":      doc.Title,
			})
			if upErr != nil {
				return eris.Wrapf(upErr, "pipeline: upload %s", doc.Path)
			}

			if !op.Done {
				_, pollErr := gemini.PollOperation(gCtx, p.gemini, op.Name,
					gemini.WithPollInterval(pollInterval),
					gemini.WithPollTimeout(maxWait),
				)
				if pollErr != nil {
					return eris.Wrapf(pollErr, "pipeline: import %s", doc.Path)
				}
			}

			mu.Lock()
			indexed++
			totalSize += int64(doc.Bytes)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tokens, indexCost := p.costCalc.IndexingForDocuments(docs)

	return &model.Corpus{
		StoreName:       fsStore.Name,
		CorpusName:      corpusName,
		FilesIndexed:    indexed,
		TotalSizeBytes:  totalSize,
		EstimatedTokens: tokens,
		CostEstimateUSD: indexCost,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// defaultCorpusName derives a display name from the target URL.
func defaultCorpusName(target string) string {
	name := target
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimSuffix(name, "/")
	name = strings.NewReplacer("/", "-", ".", "-", ":", "-").Replace(name)
	if len(name) > 60 {
		name = name[:60]
	}
	return "knowledge-" + name
}
