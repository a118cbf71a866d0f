package selector

import "fmt"

// NoEligibleCandidatesError is fatal to a selection call: the denylist
// removed every candidate. Retryable only with different parameters — there
// is no safe default provider.
type NoEligibleCandidatesError struct {
	TargetType     string
	CandidateCount int
}

func (e *NoEligibleCandidatesError) Error() string {
	return fmt.Sprintf("selector: no allowed providers for target type %q: all %d candidates were banned",
		e.TargetType, e.CandidateCount)
}

// InvalidBudgetError reports an unrecognized budget mode value.
type InvalidBudgetError struct {
	Mode string
}

func (e *InvalidBudgetError) Error() string {
	return fmt.Sprintf("selector: unknown budget mode %q", e.Mode)
}
