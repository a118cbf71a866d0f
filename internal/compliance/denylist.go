// Package compliance enforces the hard provider denylist. Matching is
// deliberately coarse substring containment: over-blocking is acceptable,
// under-blocking is not.
package compliance

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// minPatterns is the smallest banned-pattern list accepted at startup.
// A shorter list means the artifact is truncated or corrupt.
const minPatterns = 10

// ConfigError is a fatal, non-retryable startup error: the banned-pattern
// artifact is missing or invalid.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("compliance: invalid banned-pattern list: %s", e.Reason)
	}
	return fmt.Sprintf("compliance: invalid banned-pattern list %s: %s", e.Path, e.Reason)
}

// Rejection records one provider dropped by the denylist, for audit.
type Rejection struct {
	ProviderID string `json:"provider_id"`
	Pattern    string `json:"pattern"`
}

// Denylist checks providers against a loaded banned-pattern artifact.
type Denylist struct {
	version  string
	patterns []string
}

// NewDenylist builds a Denylist from already-loaded patterns. Patterns are
// lowercased once at construction.
func NewDenylist(version string, patterns []string) (*Denylist, error) {
	if len(patterns) == 0 {
		return nil, &ConfigError{Reason: "no patterns"}
	}
	if len(patterns) < minPatterns {
		return nil, &ConfigError{Reason: fmt.Sprintf("only %d patterns, need at least %d", len(patterns), minPatterns)}
	}
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return nil, &ConfigError{Reason: "blank pattern entry"}
		}
		lowered = append(lowered, p)
	}
	return &Denylist{version: version, patterns: lowered}, nil
}

// Version returns the artifact version the denylist was built from.
func (d *Denylist) Version() string { return d.version }

// PatternCount returns the number of loaded patterns.
func (d *Denylist) PatternCount() int { return len(d.patterns) }

// IsBanned reports whether any banned pattern occurs in the provider's
// identifying text (id, title, description, case-normalized). This is the
// compliance gatekeeper and is also re-invoked by the orchestrator
// immediately before executing a candidate.
func (d *Denylist) IsBanned(p model.Provider) bool {
	banned, _ := d.Match(p)
	return banned
}

// Match is IsBanned plus the pattern that matched, for audit logging.
func (d *Denylist) Match(p model.Provider) (bool, string) {
	searchable := strings.ToLower(p.ID + " " + p.Title + " " + p.Description)
	for _, pat := range d.patterns {
		if strings.Contains(searchable, pat) {
			return true, pat
		}
	}
	return false, ""
}

// FilterBanned partitions providers into allowed and rejected. Every
// rejection is logged individually and returned so callers can surface the
// audit trail. len(allowed) + len(rejected) == len(providers) always holds.
func (d *Denylist) FilterBanned(providers []model.Provider) (allowed []model.Provider, rejected []Rejection) {
	for _, p := range providers {
		if banned, pat := d.Match(p); banned {
			rejected = append(rejected, Rejection{ProviderID: p.ID, Pattern: pat})
			zap.L().Warn("compliance: banned provider rejected",
				zap.String("provider_id", p.ID),
				zap.String("pattern", pat),
			)
			continue
		}
		allowed = append(allowed, p)
	}

	zap.L().Info("compliance: denylist filter applied",
		zap.Int("input", len(providers)),
		zap.Int("allowed", len(allowed)),
		zap.Int("rejected", len(rejected)),
	)

	return allowed, rejected
}
