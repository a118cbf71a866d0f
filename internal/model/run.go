package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusSelecting  RunStatus = "selecting"
	RunStatusScraping   RunStatus = "scraping"
	RunStatusConverting RunStatus = "converting"
	RunStatusUploading  RunStatus = "uploading"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Request describes a pipeline run request.
type Request struct {
	Target     string     `json:"target"`
	CorpusName string     `json:"corpus_name,omitempty"`
	Budget     BudgetMode `json:"budget,omitempty"`
	MaxPages   int        `json:"max_pages,omitempty"`
	TopN       int        `json:"top_n,omitempty"`
}

// Run represents a single pipeline run for a target.
type Run struct {
	ID        string     `json:"id"`
	Request   Request    `json:"request"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	TargetType       TargetType `json:"target_type"`
	ProviderUsed     string     `json:"provider_used"`
	ProvidersTried   []string   `json:"providers_tried,omitempty"`
	PagesScraped     int        `json:"pages_scraped"`
	DocumentsCreated int        `json:"documents_created"`
	Corpus           *Corpus    `json:"corpus,omitempty"`
	Pricing          *Pricing   `json:"pricing,omitempty"`
	DurationMS       int64      `json:"duration_ms"`
	Error            string     `json:"error,omitempty"`
}

// Pricing summarizes the pay-per-page charge for a run.
type Pricing struct {
	Model          string  `json:"model"` // "pay-per-page"
	PagesProcessed int     `json:"pages_processed"`
	PricePerPage   float64 `json:"price_per_page"`
	StartFee       float64 `json:"start_fee"`
	EstimatedTotal float64 `json:"estimated_total"`
}

// RunPhase tracks one phase of a run for audit.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    string       `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseResult holds phase-level outcome details.
type PhaseResult struct {
	Detail     string  `json:"detail,omitempty"`
	Items      int     `json:"items,omitempty"`
	CostUSD    float64 `json:"cost_usd,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Error      string  `json:"error,omitempty"`
}
