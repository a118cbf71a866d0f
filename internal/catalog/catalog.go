// Package catalog supplies the set of eligible scraping providers.
package catalog

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// Source is a read-only view over provider records. Implementations must
// return a stable order across calls so ranking tie-breaks stay
// deterministic.
type Source interface {
	All() []model.Provider
}

// Static is an in-memory Source backed by a fixed slice. Iteration order is
// the insertion order.
type Static struct {
	providers []model.Provider
}

// NewStatic validates the records and returns a Static catalog.
// Identifiers must be unique and every provider needs at least one
// applicability tag.
func NewStatic(providers []model.Provider) (*Static, error) {
	seen := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		if p.ID == "" {
			return nil, eris.New("catalog: provider with empty id")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, eris.Errorf("catalog: duplicate provider id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if len(p.BestFor) == 0 {
			return nil, eris.Errorf("catalog: provider %q has no applicability tags", p.ID)
		}
	}
	cp := make([]model.Provider, len(providers))
	copy(cp, providers)
	return &Static{providers: cp}, nil
}

// All returns every provider in catalog order. The returned slice is a copy.
func (s *Static) All() []model.Provider {
	out := make([]model.Provider, len(s.providers))
	copy(out, s.providers)
	return out
}

// ByBudget filters providers by cost tier for the given budget mode.
// Minimal restricts to free providers in the faster speed tiers, optimal
// returns all free providers, premium returns everything. An empty result
// is valid, not an error.
func ByBudget(src Source, mode model.BudgetMode) ([]model.Provider, error) {
	if !model.ValidBudgetMode(mode) {
		return nil, eris.Errorf("catalog: unknown budget mode %q", mode)
	}

	all := src.All()
	if mode == model.BudgetPremium {
		return all, nil
	}

	var out []model.Provider
	for _, p := range all {
		if p.Cost != model.CostFree {
			continue
		}
		if mode == model.BudgetMinimal && p.Speed != model.SpeedVeryFast && p.Speed != model.SpeedFast {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ByTargetType filters to providers whose applicability tags contain t.
func ByTargetType(src Source, t model.TargetType) []model.Provider {
	var out []model.Provider
	for _, p := range src.All() {
		if p.SuitsTarget(t) {
			out = append(out, p)
		}
	}
	return out
}
