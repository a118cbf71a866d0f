// Package scrape executes web scraping runs through ranked providers,
// falling back to the next provider when one fails.
package scrape

import (
	"context"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// Result holds the pages a provider returned for a target.
type Result struct {
	Pages    []model.ScrapedPage
	Provider string // provider ID that produced the pages
}

// Runner executes a single provider against a target URL.
type Runner interface {
	Run(ctx context.Context, providerID, target string, maxPages int) ([]model.ScrapedPage, error)
	Name() string
}
