package convert

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/knowledge-cli/internal/model"
)

func TestMetadataHeader(t *testing.T) {
	t.Parallel()

	scraped := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	got := MetadataHeader("https://docs.example.com/start", "Getting Started", scraped)

	assert.Equal(t,
		"---\nSource: https://docs.example.com/start\nTitle: Getting Started\nScraped: 2026-08-01T12:30:00Z\n---\n\n",
		got)
}

func TestConvertPages(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	pages := []model.ScrapedPage{
		{
			URL:   "https://docs.example.com/one",
			Title: "Page One",
			HTML:  `<html><head><title>Page One</title></head><body><p>First page body.</p></body></html>`,
		},
		{
			URL:      "https://docs.example.com/two",
			Markdown: "# Page Two\n\nSecond page body.",
		},
		{
			URL: "https://docs.example.com/empty",
			// no content in any field: skipped
		},
		{
			URL:  "https://docs.example.com/four",
			Text: "Plain text body.",
		},
		{
			URL:     "https://docs.example.com/five",
			Content: "Generic content body.",
		},
	}

	docs, err := ConvertPages(pages, dir)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	// Numbering follows input order, including the skipped page's slot.
	assert.Equal(t, filepath.Join(dir, "doc_0000.txt"), docs[0].Path)
	assert.Equal(t, filepath.Join(dir, "doc_0001.txt"), docs[1].Path)
	assert.Equal(t, filepath.Join(dir, "doc_0003.txt"), docs[2].Path)
	assert.Equal(t, filepath.Join(dir, "doc_0004.txt"), docs[3].Path)

	first, err := os.ReadFile(docs[0].Path)
	require.NoError(t, err)
	content := string(first)
	assert.Contains(t, content, "Source: https://docs.example.com/one")
	assert.Contains(t, content, "Title: Page One")
	assert.Contains(t, content, "First page body.")
	assert.NotContains(t, content, "<p>")

	assert.Equal(t, "Page One", docs[0].Title)
	assert.Equal(t, len(content), docs[0].Bytes)
	assert.Equal(t, EstimateTokens(content), docs[0].Tokens)

	// Markdown page keeps its markdown, title derived from URL.
	second, err := os.ReadFile(docs[1].Path)
	require.NoError(t, err)
	assert.Contains(t, string(second), "Second page body.")
	assert.Equal(t, "Two", docs[1].Title)

	// The generic content field is a valid last-resort source.
	fifth, err := os.ReadFile(docs[3].Path)
	require.NoError(t, err)
	assert.Contains(t, string(fifth), "Generic content body.")
	assert.Equal(t, "Five", docs[3].Title)
}

func TestPageContentPriority(t *testing.T) {
	t.Parallel()

	page := model.ScrapedPage{
		HTML:     "<p>h</p>",
		Text:     "t",
		Markdown: "m",
		Content:  "c",
	}

	got, isHTML := pageContent(page)
	assert.True(t, isHTML)
	assert.Equal(t, "<p>h</p>", got)

	page.HTML = ""
	got, isHTML = pageContent(page)
	assert.False(t, isHTML)
	assert.Equal(t, "t", got)

	page.Text = ""
	got, _ = pageContent(page)
	assert.Equal(t, "m", got)

	page.Markdown = ""
	got, _ = pageContent(page)
	assert.Equal(t, "c", got)
}

func TestConvertPagesEmptyInput(t *testing.T) {
	t.Parallel()

	docs, err := ConvertPages(nil, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestConvertPagesBadOutputDir(t *testing.T) {
	t.Parallel()

	// A file where the directory should be.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := ConvertPages([]model.ScrapedPage{{URL: "u", Text: "t"}}, blocker)
	assert.Error(t, err)
}
