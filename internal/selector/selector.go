// Package selector ranks compliant scraping providers for a target.
package selector

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/catalog"
	"github.com/sells-group/knowledge-cli/internal/compliance"
	"github.com/sells-group/knowledge-cli/internal/model"
)

// DefaultTopN is the default candidate list length: one primary plus two
// fallbacks.
const DefaultTopN = 3

// Selector ties together classification, the catalog, the denylist, and the
// scorer. It is stateless between calls and performs no I/O.
type Selector struct {
	catalog  catalog.Source
	denylist *compliance.Denylist
	scorer   *Scorer
}

// New creates a Selector.
func New(src catalog.Source, d *compliance.Denylist, scorer *Scorer) *Selector {
	if scorer == nil {
		scorer = NewScorer(DefaultWeights())
	}
	return &Selector{catalog: src, denylist: d, scorer: scorer}
}

// Select classifies the target, filters banned providers, scores the rest,
// and returns the top-N candidates ordered by score descending. Equal scores
// preserve catalog order (stable sort), which makes repeated calls with the
// same inputs fully deterministic.
//
// Returns *NoEligibleCandidatesError if filtering removes every candidate
// and *InvalidBudgetError for an unrecognized budget mode.
func (s *Selector) Select(target string, mode model.BudgetMode, topN int) (*model.Selection, error) {
	if !model.ValidBudgetMode(mode) {
		return nil, &InvalidBudgetError{Mode: string(mode)}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	targetType := ClassifyTarget(target)
	candidates := s.catalog.All()

	zap.L().Info("selector: selecting providers",
		zap.String("target", target),
		zap.String("target_type", string(targetType)),
		zap.String("budget", string(mode)),
		zap.Int("candidates", len(candidates)),
	)

	allowed, _ := s.denylist.FilterBanned(candidates)
	if len(allowed) == 0 {
		return nil, &NoEligibleCandidatesError{
			TargetType:     string(targetType),
			CandidateCount: len(candidates),
		}
	}

	scored := make([]model.Candidate, 0, len(allowed))
	for _, p := range allowed {
		scored = append(scored, model.Candidate{
			Provider: p,
			Score:    s.scorer.Score(p, mode, targetType),
		})
	}

	// Stable: equal scores keep catalog order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}

	for i, c := range scored {
		zap.L().Info("selector: ranked candidate",
			zap.Int("rank", i+1),
			zap.String("provider_id", c.Provider.ID),
			zap.Float64("score", c.Score),
		)
	}

	return &model.Selection{
		Target:     target,
		TargetType: targetType,
		Budget:     mode,
		Candidates: scored,
	}, nil
}
