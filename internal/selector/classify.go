package selector

import (
	"strings"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// Target classification patterns, checked in fixed priority order:
// documentation > blog > forum > news. First matching category wins;
// anything else is general.
var classifyCascade = []struct {
	targetType model.TargetType
	patterns   []string
}{
	{model.TargetDocumentation, []string{"docs.", "/docs/", "documentation", "api.", "developer."}},
	{model.TargetBlog, []string{"/blog/", "blog.", "medium.com", "substack.com"}},
	{model.TargetForum, []string{"forum", "reddit.com", "stackoverflow.com", "discourse"}},
	{model.TargetNews, []string{"news", "article", "press", "/story/"}},
}

// ClassifyTarget derives a target type from a URL or domain string. Pure
// function of its input; unrecognized targets classify as general.
func ClassifyTarget(target string) model.TargetType {
	lower := strings.ToLower(target)
	for _, c := range classifyCascade {
		for _, p := range c.patterns {
			if strings.Contains(lower, p) {
				return c.targetType
			}
		}
	}
	return model.TargetGeneral
}
