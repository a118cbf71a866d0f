package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// QueryGuide renders a markdown guide describing how to query the uploaded
// retrieval store.
func QueryGuide(corpus *model.Corpus, result *model.RunResult) string {
	var b strings.Builder

	b.WriteString("# Knowledge Base: " + corpus.CorpusName + "\n\n")
	b.WriteString("## Store\n\n")
	fmt.Fprintf(&b, "- **Store name:** `%s`\n", corpus.StoreName)
	fmt.Fprintf(&b, "- **Files indexed:** %d\n", corpus.FilesIndexed)
	fmt.Fprintf(&b, "- **Estimated tokens:** %d\n", corpus.EstimatedTokens)
	fmt.Fprintf(&b, "- **One-time indexing cost:** $%.4f\n", corpus.CostEstimateUSD)
	fmt.Fprintf(&b, "- **Created:** %s\n\n", corpus.CreatedAt.Format("2006-01-02 15:04 UTC"))

	if result != nil {
		b.WriteString("## Source\n\n")
		fmt.Fprintf(&b, "- **Target type:** %s\n", result.TargetType)
		fmt.Fprintf(&b, "- **Provider used:** %s\n", result.ProviderUsed)
		fmt.Fprintf(&b, "- **Pages scraped:** %d\n\n", result.PagesScraped)
	}

	b.WriteString("## Querying\n\n")
	b.WriteString("Pass the store name as a `file_search` tool resource when calling " +
		"`generateContent`:\n\n")
	b.WriteString("```json\n")
	fmt.Fprintf(&b, `{
  "tools": [{
    "file_search": {
      "file_search_store_names": ["%s"]
    }
  }]
}
`, corpus.StoreName)
	b.WriteString("```\n\n")
	b.WriteString("Storage is free; you pay $0.15 per million tokens to index and " +
		"standard token rates at query time.\n")

	return b.String()
}

// WriteQueryGuide writes the guide to path.
func WriteQueryGuide(path string, corpus *model.Corpus, result *model.RunResult) error {
	if corpus == nil {
		return eris.New("pipeline: no corpus to describe")
	}
	if err := os.WriteFile(path, []byte(QueryGuide(corpus, result)), 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write query guide %s", path)
	}
	return nil
}
