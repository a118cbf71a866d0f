// Package cost computes indexing and per-page pricing for pipeline runs.
package cost

import (
	"math"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// Rates holds pricing configuration.
type Rates struct {
	IndexingPerMTok float64 `yaml:"indexing_per_mtok" mapstructure:"indexing_per_mtok"`
	PricePerPage    float64 `yaml:"price_per_page" mapstructure:"price_per_page"`
	StartFee        float64 `yaml:"start_fee" mapstructure:"start_fee"`
}

// DefaultRates returns the default pricing rates: $0.15 per million indexed
// tokens (one-time), $0.0025 per page processed, $0.02 run start fee.
func DefaultRates() Rates {
	return Rates{
		IndexingPerMTok: 0.15,
		PricePerPage:    0.0025,
		StartFee:        0.02,
	}
}

// Calculator computes run costs.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Indexing returns the one-time retrieval-store indexing cost for the given
// estimated token count.
func (c *Calculator) Indexing(tokens int) float64 {
	return (float64(tokens) / 1e6) * c.rates.IndexingPerMTok
}

// IndexingForDocuments sums estimated tokens across documents and returns
// (totalTokens, cost).
func (c *Calculator) IndexingForDocuments(docs []model.Document) (int, float64) {
	total := 0
	for _, d := range docs {
		total += d.Tokens
	}
	return total, c.Indexing(total)
}

// PerPage builds the pay-per-page pricing summary for a run.
func (c *Calculator) PerPage(pages int) *model.Pricing {
	total := c.rates.StartFee + float64(pages)*c.rates.PricePerPage
	return &model.Pricing{
		Model:          "pay-per-page",
		PagesProcessed: pages,
		PricePerPage:   c.rates.PricePerPage,
		StartFee:       c.rates.StartFee,
		EstimatedTotal: math.Round(total*100) / 100,
	}
}
