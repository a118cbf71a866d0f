package compliance

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// patternsFile is the on-disk shape of the banned-pattern artifact. Patterns
// are grouped by category so the list can be audited against the compliance
// terms it implements.
type patternsFile struct {
	Version    string              `yaml:"version"`
	Categories map[string][]string `yaml:"categories"`
}

// DefaultPatterns returns the built-in banned-pattern list, grouped by
// category. Used when no artifact path is configured.
func DefaultPatterns() (version string, patterns []string) {
	return "builtin-v1", []string{
		// Social media platforms
		"instagram",
		"facebook",
		"tiktok",
		"linkedin",
		"twitter",
		"x-scraper",
		"youtube",
		// E-commerce platforms
		"amazon",
		"amz-",
		// General search engines
		"google-maps",
		"google-search",
		"google-trends",
		// B2B data platforms
		"apollo",
		"apollo-io",
	}
}

// Load reads and validates the banned-pattern artifact. This runs once at
// process start, before the selector is permitted to run. An empty path
// falls back to the built-in list. All failures are *ConfigError.
func Load(path string) (*Denylist, error) {
	if path == "" {
		version, patterns := DefaultPatterns()
		return NewDenylist(version, patterns)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: err.Error()}
	}

	var pf patternsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, &ConfigError{Path: path, Reason: "parse: " + err.Error()}
	}

	// Flatten in sorted category order so pattern order, and therefore
	// first-match attribution in audit logs, is stable across restarts.
	categories := make([]string, 0, len(pf.Categories))
	for name := range pf.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var patterns []string
	for _, name := range categories {
		patterns = append(patterns, pf.Categories[name]...)
	}

	d, err := NewDenylist(pf.Version, patterns)
	if err != nil {
		if ce, ok := err.(*ConfigError); ok {
			ce.Path = path
		}
		return nil, err
	}

	zap.L().Info("compliance: banned-pattern artifact loaded",
		zap.String("path", path),
		zap.String("version", pf.Version),
		zap.Int("patterns", len(patterns)),
	)

	return d, nil
}
