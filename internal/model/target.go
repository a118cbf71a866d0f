package model

// TargetType is a single label classifying a scrape target, derived from its
// URL or domain string.
type TargetType string

const (
	TargetDocumentation TargetType = "documentation"
	TargetBlog          TargetType = "blog"
	TargetForum         TargetType = "forum"
	TargetNews          TargetType = "news"
	TargetGeneral       TargetType = "general"
)

// AllTargetTypes returns all defined target types in classification
// priority order.
func AllTargetTypes() []TargetType {
	return []TargetType{
		TargetDocumentation,
		TargetBlog,
		TargetForum,
		TargetNews,
		TargetGeneral,
	}
}
