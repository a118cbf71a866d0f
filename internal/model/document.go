package model

import "time"

// ScrapedPage is a single page returned by a provider run. Content is the
// generic field some providers use instead of html/markdown/text.
type ScrapedPage struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Text     string `json:"text,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Document is a converted text document ready for upload.
type Document struct {
	Path      string    `json:"path"`
	SourceURL string    `json:"source_url"`
	Title     string    `json:"title"`
	Bytes     int       `json:"bytes"`
	Tokens    int       `json:"tokens"` // estimated
	CreatedAt time.Time `json:"created_at"`
}

// Corpus holds metadata about an uploaded retrieval store.
type Corpus struct {
	StoreName       string    `json:"file_search_store_name"`
	CorpusName      string    `json:"corpus_name"`
	FilesIndexed    int       `json:"files_indexed"`
	TotalSizeBytes  int64     `json:"total_size_bytes"`
	EstimatedTokens int       `json:"estimated_tokens"`
	CostEstimateUSD float64   `json:"cost_estimate_usd"`
	CreatedAt       time.Time `json:"created_at"`
}
