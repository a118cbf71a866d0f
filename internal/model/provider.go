package model

// CostTier classifies a provider's pricing model.
type CostTier string

const (
	CostFree CostTier = "free"
	CostPaid CostTier = "paid"
)

// OutputFormat is the primary content format a provider emits.
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatText     OutputFormat = "text"
	FormatHTML     OutputFormat = "html"
)

// SpeedTier is an ordinal descriptor of provider latency.
type SpeedTier string

const (
	SpeedVeryFast SpeedTier = "very_fast"
	SpeedFast     SpeedTier = "fast"
	SpeedMedium   SpeedTier = "medium"
)

// Provider describes a web-scraping provider in the catalog. Records are
// immutable after catalog construction.
type Provider struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	SuccessRate  float64      `json:"success_rate" yaml:"success_rate"`
	MonthlyUsers int          `json:"monthly_users" yaml:"monthly_users"`
	Rating       float64      `json:"rating" yaml:"rating"`
	Cost         CostTier     `json:"cost" yaml:"cost"`
	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`
	BestFor      []TargetType `json:"best_for" yaml:"best_for"`
	Speed        SpeedTier    `json:"speed" yaml:"speed"`
}

// SuitsTarget reports whether the provider's applicability tags contain t.
func (p Provider) SuitsTarget(t TargetType) bool {
	for _, bt := range p.BestFor {
		if bt == t {
			return true
		}
	}
	return false
}

// BudgetMode trades cost against quality during provider selection.
type BudgetMode string

const (
	BudgetMinimal BudgetMode = "minimal"
	BudgetOptimal BudgetMode = "optimal"
	BudgetPremium BudgetMode = "premium"
)

// AllBudgetModes returns all defined budget modes.
func AllBudgetModes() []BudgetMode {
	return []BudgetMode{BudgetMinimal, BudgetOptimal, BudgetPremium}
}

// ValidBudgetMode reports whether m is a recognized budget mode.
func ValidBudgetMode(m BudgetMode) bool {
	switch m {
	case BudgetMinimal, BudgetOptimal, BudgetPremium:
		return true
	}
	return false
}

// Candidate pairs a provider with its computed suitability score.
type Candidate struct {
	Provider Provider `json:"provider"`
	Score    float64  `json:"score"`
}

// Selection is the ordered outcome of provider selection: primary first,
// then fallbacks, plus the resolved target classification. Constructed
// fresh per request and never persisted.
type Selection struct {
	Target     string      `json:"target"`
	TargetType TargetType  `json:"target_type"`
	Budget     BudgetMode  `json:"budget"`
	Candidates []Candidate `json:"candidates"`
}

// ProviderIDs returns the ranked provider identifiers, ready to hand to the
// execution layer.
func (s *Selection) ProviderIDs() []string {
	ids := make([]string, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		ids = append(ids, c.Provider.ID)
	}
	return ids
}
