package scrape

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/model"
	"github.com/sells-group/knowledge-cli/pkg/apify"
)

// ApifyRunner runs Apify actors and collects their dataset output.
type ApifyRunner struct {
	client  apify.Client
	timeout time.Duration
}

// NewApifyRunner creates a runner backed by the Apify API.
func NewApifyRunner(client apify.Client, timeout time.Duration) *ApifyRunner {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ApifyRunner{client: client, timeout: timeout}
}

func (r *ApifyRunner) Name() string { return "apify" }

// Run starts the actor, polls until it finishes, and maps the dataset
// items into scraped pages. Items with no content at all are dropped.
func (r *ApifyRunner) Run(ctx context.Context, providerID, target string, maxPages int) ([]model.ScrapedPage, error) {
	input := apify.RunInput{
		StartURLs:      []apify.StartURL{{URL: target}},
		MaxCrawlPages:  maxPages,
		SaveMarkdown:   true,
		SaveHTML:       true,
		MaxConcurrency: 10,
	}

	run, err := r.client.StartRun(ctx, providerID, input)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: start run for %s", providerID)
	}

	zap.L().Info("scrape: actor run started",
		zap.String("provider", providerID),
		zap.String("run_id", run.ID),
		zap.String("target", target),
	)

	finished, err := apify.PollRun(ctx, r.client, run.ID, apify.WithPollTimeout(r.timeout))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: poll run %s", run.ID)
	}

	items, err := r.client.DatasetItems(ctx, finished.DefaultDatasetID)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch dataset %s", finished.DefaultDatasetID)
	}

	pages := make([]model.ScrapedPage, 0, len(items))
	for _, item := range items {
		// Some providers nest their HTML under a crawl object.
		html := item.HTML
		if html == "" {
			html = item.Crawl.HTML
		}
		if html == "" && item.Markdown == "" && item.Text == "" && item.Content == "" {
			continue
		}
		pages = append(pages, model.ScrapedPage{
			URL:      item.URL,
			Title:    item.Title,
			HTML:     html,
			Markdown: item.Markdown,
			Text:     item.Text,
			Content:  item.Content,
		})
	}

	if len(pages) == 0 {
		return nil, eris.Errorf("scrape: provider %s returned no usable pages", providerID)
	}

	return pages, nil
}
