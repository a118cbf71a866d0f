package selector

import (
	"math"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// Weights holds the scoring policy. The values are a policy decision
// independent of the algorithm, so they are configuration rather than
// inline literals. The defaults sum to a maximum attainable score of 100.
type Weights struct {
	SuccessRateMax   float64 `yaml:"success_rate_max" mapstructure:"success_rate_max"`
	PopularityMax    float64 `yaml:"popularity_max" mapstructure:"popularity_max"`
	PopularityBase   float64 `yaml:"popularity_base" mapstructure:"popularity_base"`
	PopularityPerLog float64 `yaml:"popularity_per_log" mapstructure:"popularity_per_log"`
	CostFree         float64 `yaml:"cost_free" mapstructure:"cost_free"`
	CostPaidPremium  float64 `yaml:"cost_paid_premium" mapstructure:"cost_paid_premium"`
	TargetMatch      float64 `yaml:"target_match" mapstructure:"target_match"`
	FormatMarkdown   float64 `yaml:"format_markdown" mapstructure:"format_markdown"`
	FormatText       float64 `yaml:"format_text" mapstructure:"format_text"`
	FormatHTML       float64 `yaml:"format_html" mapstructure:"format_html"`
}

// DefaultWeights returns the canonical production scoring policy:
// success rate 40, popularity 20 (log-scaled), cost efficiency 20,
// target-type match 10, output format 10.
func DefaultWeights() Weights {
	return Weights{
		SuccessRateMax:   40,
		PopularityMax:    20,
		PopularityBase:   5,
		PopularityPerLog: 5,
		CostFree:         20,
		CostPaidPremium:  10,
		TargetMatch:      10,
		FormatMarkdown:   10,
		FormatText:       7,
		FormatHTML:       5,
	}
}

// Scorer computes suitability scores for providers.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score computes the weighted-sum suitability of a provider for a budget
// mode and target type. Sub-scores are independent and additive; with the
// default weights the result is in [0,100]. Pure function: identical inputs
// always yield identical output.
//
// Popularity is log10-scaled so very large user counts cannot dominate:
// 1 user scores the base, each decade adds PopularityPerLog, capped at
// PopularityMax. Zero users contributes nothing.
func (s *Scorer) Score(p model.Provider, mode model.BudgetMode, targetType model.TargetType) float64 {
	w := s.weights
	score := p.SuccessRate * w.SuccessRateMax

	if p.MonthlyUsers > 0 {
		pop := w.PopularityBase + math.Log10(float64(p.MonthlyUsers))*w.PopularityPerLog
		score += math.Min(w.PopularityMax, pop)
	}

	if p.Cost == model.CostFree {
		score += w.CostFree
	} else if mode == model.BudgetPremium {
		score += w.CostPaidPremium
	}

	if p.SuitsTarget(targetType) {
		score += w.TargetMatch
	}

	switch p.OutputFormat {
	case model.FormatMarkdown:
		score += w.FormatMarkdown
	case model.FormatText:
		score += w.FormatText
	case model.FormatHTML:
		score += w.FormatHTML
	}

	return math.Round(score*10) / 10
}
