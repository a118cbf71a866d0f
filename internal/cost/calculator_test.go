package cost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/knowledge-cli/internal/model"
)

func TestIndexing(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(DefaultRates())

	tests := []struct {
		name   string
		tokens int
		want   float64
	}{
		{"zero tokens", 0, 0},
		{"one million tokens", 1_000_000, 0.15},
		{"half million tokens", 500_000, 0.075},
		{"ten million tokens", 10_000_000, 1.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, calc.Indexing(tt.tokens), 1e-9)
		})
	}
}

func TestIndexingForDocuments(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(DefaultRates())

	docs := []model.Document{
		{Path: "a", Tokens: 300_000, CreatedAt: time.Now()},
		{Path: "b", Tokens: 700_000, CreatedAt: time.Now()},
	}

	tokens, cost := calc.IndexingForDocuments(docs)
	assert.Equal(t, 1_000_000, tokens)
	assert.InDelta(t, 0.15, cost, 1e-9)
}

func TestPerPage(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(DefaultRates())

	tests := []struct {
		name  string
		pages int
		want  float64
	}{
		{"zero pages still pays the start fee", 0, 0.02},
		{"ten pages", 10, 0.05},     // 0.02 + 10*0.0025 = 0.045 -> 0.05 rounded to cents
		{"hundred pages", 100, 0.27}, // 0.02 + 0.25
		{"thousand pages", 1000, 2.52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pricing := calc.PerPage(tt.pages)
			assert.Equal(t, "pay-per-page", pricing.Model)
			assert.Equal(t, tt.pages, pricing.PagesProcessed)
			assert.InDelta(t, tt.want, pricing.EstimatedTotal, 1e-9)
		})
	}
}

func TestCustomRates(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(Rates{IndexingPerMTok: 1.0, PricePerPage: 0.01, StartFee: 0})

	assert.InDelta(t, 2.0, calc.Indexing(2_000_000), 1e-9)
	assert.InDelta(t, 0.5, calc.PerPage(50).EstimatedTotal, 1e-9)
}
