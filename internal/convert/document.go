package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/knowledge-cli/internal/model"
)

// MetadataHeader renders the document preamble carrying provenance for
// downstream retrieval.
func MetadataHeader(sourceURL, title string, scrapedAt time.Time) string {
	return fmt.Sprintf("---\nSource: %s\nTitle: %s\nScraped: %s\n---\n\n",
		sourceURL, title, scrapedAt.UTC().Format(time.RFC3339))
}

// pageContent picks the first non-empty content field of a scraped page.
// Different providers populate different fields, so all known fields are
// tried in order: html, text, markdown, content.
func pageContent(p model.ScrapedPage) (content string, isHTML bool) {
	if p.HTML != "" {
		return p.HTML, true
	}
	if p.Text != "" {
		return p.Text, false
	}
	if p.Markdown != "" {
		return p.Markdown, false
	}
	if p.Content != "" {
		return p.Content, false
	}
	return "", false
}

// ConvertPages converts scraped pages to text documents under outputDir.
// Pages with no content in any known field are skipped and logged. File
// names are doc_0000.txt, doc_0001.txt, ... in input order.
func ConvertPages(pages []model.ScrapedPage, outputDir string) ([]model.Document, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "convert: create output dir %s", outputDir)
	}

	now := time.Now().UTC()
	var docs []model.Document
	for i, page := range pages {
		content, isHTML := pageContent(page)
		if content == "" {
			zap.L().Warn("convert: skipping page with no content",
				zap.String("url", page.URL),
			)
			continue
		}

		title := page.Title
		var text string
		if isHTML {
			if title == "" {
				title = ExtractTitle(content, page.URL)
			}
			text = CleanHTML(content)
		} else {
			if title == "" {
				title = titleFromURL(page.URL)
			}
			text = NormalizeWhitespace(content)
		}

		doc := MetadataHeader(page.URL, title, now) + text

		path := filepath.Join(outputDir, fmt.Sprintf("doc_%04d.txt", i))
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return nil, eris.Wrapf(err, "convert: write %s", path)
		}

		docs = append(docs, model.Document{
			Path:      path,
			SourceURL: page.URL,
			Title:     title,
			Bytes:     len(doc),
			Tokens:    EstimateTokens(doc),
			CreatedAt: now,
		})
	}

	zap.L().Info("convert: documents created",
		zap.Int("pages", len(pages)),
		zap.Int("documents", len(docs)),
		zap.String("dir", outputDir),
	)

	return docs, nil
}
